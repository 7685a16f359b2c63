package hikcentral

// Camera is a camera resource registered on the platform.
type Camera struct {
	CameraIndexCode string `json:"cameraIndexCode"`
	CameraName      string `json:"cameraName"`
	CameraTypeName  string `json:"cameraTypeName"`
	RegionIndexCode string `json:"regionIndexCode"`
	Status          int    `json:"status"`
}

// Online reports whether the platform considers the camera reachable.
func (c Camera) Online() bool { return c.Status == 1 }

// Device is an encoding device (NVR, DVR, IPC) managed by the platform.
type Device struct {
	DeviceIndexCode string `json:"indexCode"`
	DeviceName      string `json:"name"`
	DeviceType      string `json:"treatyType"`
	RegionIndexCode string `json:"regionIndexCode"`
	Status          int    `json:"status"`
}

// Online reports whether the device is currently registered and reachable.
func (d Device) Online() bool { return d.Status == 1 }

// Org is a node of the platform's organization tree.
type Org struct {
	OrgIndexCode       string `json:"orgIndexCode"`
	OrgName            string `json:"orgName"`
	ParentOrgIndexCode string `json:"parentOrgIndexCode"`
}

// PreviewURL is a live-view address for one camera.
type PreviewURL struct {
	URL string `json:"url"`
}

// page is the vendor's paged data envelope.
type page[T any] struct {
	Total    int `json:"total"`
	PageNo   int `json:"pageNo"`
	PageSize int `json:"pageSize"`
	List     []T `json:"list"`
}
