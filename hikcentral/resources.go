package hikcentral

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kpaulsen/vmsbridge/paginate"
)

const defaultPageSize = 100

// collectPaged drives a pageNo/pageSize endpoint to completion. The
// platform reports a total row count, so aggregation is exact.
func collectPaged[T any](ctx context.Context, c *Client, path string, condition map[string]any, pageSize int) ([]T, error) {
	return paginate.CollectAll(ctx, pageSize, func(ctx context.Context, offset, limit int) ([]T, int, error) {
		body := map[string]any{
			"pageNo":   offset/limit + 1,
			"pageSize": limit,
		}
		for k, v := range condition {
			body[k] = v
		}

		resp, err := c.do(ctx, http.MethodPost, path, nil, body, true)
		if err != nil {
			return nil, 0, err
		}

		var p page[T]
		if err := json.Unmarshal(resp.Data, &p); err != nil {
			return nil, 0, fmt.Errorf("decoding page: %w", err)
		}
		return p.List, p.Total, nil
	})
}

// ListCameras returns every camera registered on the platform.
func (c *Client) ListCameras(ctx context.Context) ([]Camera, error) {
	return collectPaged[Camera](ctx, c, "/artemis/api/resource/v1/cameras", nil, defaultPageSize)
}

// ListCamerasByRegion returns the cameras under one region.
func (c *Client) ListCamerasByRegion(ctx context.Context, regionIndexCode string) ([]Camera, error) {
	cond := map[string]any{"regionIndexCode": regionIndexCode}
	return collectPaged[Camera](ctx, c, "/artemis/api/resource/v1/regions/regionIndexCode/cameras", cond, defaultPageSize)
}

// ListDevices returns every encoding device registered on the platform.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	return collectPaged[Device](ctx, c, "/artemis/api/resource/v1/encodeDevice/encodeDeviceList", nil, defaultPageSize)
}

// ListOrgs returns the full organization tree as a flat list.
func (c *Client) ListOrgs(ctx context.Context) ([]Org, error) {
	return collectPaged[Org](ctx, c, "/artemis/api/resource/v1/org/orgList", nil, defaultPageSize)
}

// CameraPreviewURL requests a live-view URL for one camera.
func (c *Client) CameraPreviewURL(ctx context.Context, cameraIndexCode, protocol string) (*PreviewURL, error) {
	body := map[string]any{
		"cameraIndexCode": cameraIndexCode,
		"protocol":        protocol,
	}
	resp, err := c.Request(ctx, http.MethodPost, "/artemis/api/video/v1/cameras/previewURLs", nil, body)
	if err != nil {
		return nil, err
	}

	var preview PreviewURL
	if err := json.Unmarshal(resp.Data, &preview); err != nil {
		return nil, fmt.Errorf("decoding preview url: %w", err)
	}
	return &preview, nil
}
