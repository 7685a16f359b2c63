package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpaulsen/vmsbridge/apierr"
	"github.com/kpaulsen/vmsbridge/bridge"
)

var testDevices = []bridge.Device{
	{Vendor: "hikcentral", ID: "h1", Name: "Lobby Camera", Type: "camera", Online: true},
	{Vendor: "hikcentral", ID: "h2", Name: "Garage NVR", Type: "nvr", Online: false},
	{Vendor: "dahua", ID: "d1", Name: "Front Door", Type: "access", Online: true},
	{Vendor: "uniview", ID: "u1", Name: "Backyard Camera", Type: "camera", Online: true},
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		wantIDs    []string
	}{
		{"online only", "Online", []string{"h1", "d1", "u1"}},
		{"by vendor", `Vendor == "dahua"`, []string{"d1"}},
		{"by type", `Type == "camera"`, []string{"h1", "u1"}},
		{"combined", `Online && Type == "camera" && Vendor != "uniview"`, []string{"h1"}},
		{"name contains", `Name contains "Camera"`, []string{"h1", "u1"}},
		{"matches nothing", `Vendor == "axis"`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.expression)
			require.NoError(t, err)

			matched, err := f.Apply(testDevices)
			require.NoError(t, err)

			var ids []string
			for _, d := range matched {
				ids = append(ids, d.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestFilterCompileErrors(t *testing.T) {
	tests := []struct {
		name       string
		expression string
	}{
		{"empty", ""},
		{"syntax error", "Online &&"},
		{"not boolean", `Name + "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.expression)
			require.Error(t, err)
			assert.True(t, apierr.IsParameter(err), "compile failures are parameter errors")
		})
	}
}
