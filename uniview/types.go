package uniview

// Device is a device registered on the VMS.
type Device struct {
	DeviceID   string `json:"DeviceID"`
	DeviceName string `json:"DeviceName"`
	DeviceType string `json:"DeviceType"`
	IPAddr     string `json:"IPAddr"`
	Status     int    `json:"Status"`
}

// Online reports whether the VMS considers the device reachable.
func (d Device) Online() bool { return d.Status == 1 }

// Channel is a video channel belonging to a device.
type Channel struct {
	ChannelID   string `json:"ChannelID"`
	ChannelName string `json:"ChannelName"`
	DeviceID    string `json:"DeviceID"`
	Status      int    `json:"Status"`
}

// SystemInfo describes the platform itself.
type SystemInfo struct {
	DeviceModel     string `json:"DeviceModel"`
	SoftwareVersion string `json:"SoftwareVersion"`
	SerialNumber    string `json:"SerialNumber"`
}

// deviceList is the device query payload. The VMS reports only the count
// of rows in this page, never a grand total.
type deviceList struct {
	Num        int      `json:"Num"`
	DeviceList []Device `json:"DeviceList"`
}

// channelList is the channel query payload.
type channelList struct {
	Num         int       `json:"Num"`
	ChannelList []Channel `json:"ChannelList"`
}
