package dahua

// Device is a device registered on the ICC platform.
type Device struct {
	DeviceCode     string `json:"deviceCode"`
	DeviceName     string `json:"deviceName"`
	DeviceCategory string `json:"deviceCategory"`
	DeviceType     string `json:"deviceType"`
	DeviceIP       string `json:"deviceIp"`
	IsOnline       int    `json:"isOnline"`
	OrgCode        string `json:"orgCode"`
}

// Online reports whether the platform considers the device reachable.
func (d Device) Online() bool { return d.IsOnline == 1 }

// AccessDoor is an access-control point.
type AccessDoor struct {
	ChannelCode string `json:"channelCode"`
	ChannelName string `json:"channelName"`
	DeviceCode  string `json:"deviceCode"`
	DoorStatus  int    `json:"doorStatus"`
}

// Org is a node of the platform's organization tree.
type Org struct {
	OrgCode       string `json:"orgCode"`
	OrgName       string `json:"orgName"`
	ParentOrgCode string `json:"parentOrgCode"`
}

// page is the vendor's paged data envelope.
type page[T any] struct {
	TotalCount int `json:"totalCount"`
	PageNum    int `json:"pageNum"`
	PageSize   int `json:"pageSize"`
	PageData   []T `json:"pageData"`
}
