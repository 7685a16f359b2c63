package dahua

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kpaulsen/vmsbridge/apierr"
	"github.com/kpaulsen/vmsbridge/paginate"
)

const defaultPageSize = 100

// collectPaged drives a pageNum/pageSize endpoint to completion. ICC
// reports totalCount, so aggregation is exact.
func collectPaged[T any](ctx context.Context, c *Client, path string, condition map[string]any, pageSize int) ([]T, error) {
	return paginate.CollectAll(ctx, pageSize, func(ctx context.Context, offset, limit int) ([]T, int, error) {
		body := map[string]any{
			"pageNum":  offset/limit + 1,
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
		return p.PageData, p.TotalCount, nil
	})
}

// ListDevices returns every device registered on the platform.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	return collectPaged[Device](ctx, c, "/evo-apigw/evo-brm/1.2.0/device/subsystem/page", nil, defaultPageSize)
}

// ListDevicesByOrg returns the devices under one organization node.
func (c *Client) ListDevicesByOrg(ctx context.Context, orgCode string) ([]Device, error) {
	cond := map[string]any{"orgCode": orgCode}
	return collectPaged[Device](ctx, c, "/evo-apigw/evo-brm/1.2.0/device/subsystem/page", cond, defaultPageSize)
}

// ListAccessDoors returns every access-control point.
func (c *Client) ListAccessDoors(ctx context.Context) ([]AccessDoor, error) {
	return collectPaged[AccessDoor](ctx, c, "/evo-apigw/evo-accesscontrol/1.0.0/door/channel/page", nil, defaultPageSize)
}

// ListOrgs returns the organization tree as a flat list.
func (c *Client) ListOrgs(ctx context.Context) ([]Org, error) {
	return collectPaged[Org](ctx, c, "/evo-apigw/evo-brm/1.0.0/organization/page", nil, defaultPageSize)
}

// GetDevice returns one device by its code.
func (c *Client) GetDevice(ctx context.Context, deviceCode string) (*Device, error) {
	if deviceCode == "" {
		return nil, apierr.New(apierr.KindParameter, "dahua: device code is required")
	}

	resp, err := c.Request(ctx, http.MethodGet, "/evo-apigw/evo-brm/1.2.0/device/"+deviceCode, nil, nil)
	if err != nil {
		return nil, err
	}

	var device Device
	if err := json.Unmarshal(resp.Data, &device); err != nil {
		return nil, fmt.Errorf("decoding device: %w", err)
	}
	return &device, nil
}
