package uniview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/kpaulsen/vmsbridge/paginate"
)

const defaultPageSize = 100

// ListDevices returns every device registered on the VMS. The platform
// never reports a grand total, so aggregation stops on the first short page
// (or the page ceiling).
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	return c.QueryDevices(ctx, nil)
}

// QueryDevices returns the devices matching condition, which is merged into
// each page request.
func (c *Client) QueryDevices(ctx context.Context, condition map[string]any) ([]Device, error) {
	return paginate.CollectAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]Device, int, error) {
		resp, err := c.do(ctx, http.MethodPost, "/VIID/device/query", pageBody(condition, offset, limit), true)
		if err != nil {
			return nil, 0, err
		}

		var list deviceList
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			return nil, 0, fmt.Errorf("decoding device list: %w", err)
		}
		return list.DeviceList, paginate.NoTotal, nil
	})
}

// ListChannels returns every video channel on the VMS.
func (c *Client) ListChannels(ctx context.Context) ([]Channel, error) {
	return paginate.CollectAll(ctx, defaultPageSize, func(ctx context.Context, offset, limit int) ([]Channel, int, error) {
		resp, err := c.do(ctx, http.MethodPost, "/VIID/channel/query", pageBody(nil, offset, limit), true)
		if err != nil {
			return nil, 0, err
		}

		var list channelList
		if err := json.Unmarshal(resp.Data, &list); err != nil {
			return nil, 0, fmt.Errorf("decoding channel list: %w", err)
		}
		return list.ChannelList, paginate.NoTotal, nil
	})
}

// GetSystemInfo returns the platform's model and version information.
func (c *Client) GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/VIID/system/info", nil, true)
	if err != nil {
		return nil, err
	}

	var info SystemInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return nil, fmt.Errorf("decoding system info: %w", err)
	}
	return &info, nil
}

// pageBody merges the pagination window into the caller's condition.
func pageBody(condition map[string]any, offset, limit int) map[string]any {
	body := map[string]any{
		"RecordStartNo": offset,
		"PageRecordNum": limit,
	}
	for k, v := range condition {
		body[k] = v
	}
	return body
}
