package openstack

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	th "github.com/gophercloud/gophercloud/v2/testhelper"
	fakeclient "github.com/gophercloud/gophercloud/v2/testhelper/client"
)

// newFakeClient points both service clients at a fresh fake server.
func newFakeClient(t *testing.T) (*Client, th.FakeServer) {
	t.Helper()

	fakeServer := th.SetupHTTP()
	t.Cleanup(fakeServer.Teardown)

	sc := fakeclient.ServiceClient(fakeServer)
	return &Client{ComputeClient: sc, BlockStorageClient: sc}, fakeServer
}

// handleVolumes serves a volume listing, checking the name filter is sent.
func handleVolumes(t *testing.T, fakeServer th.FakeServer, name, body string) {
	t.Helper()
	fakeServer.Mux.HandleFunc("/volumes/detail", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		th.TestHeader(t, r, "X-Auth-Token", fakeclient.TokenID)
		if got := r.URL.Query().Get("name"); got != name {
			t.Errorf("name filter = %q, want %q", got, name)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, body)
	})
}

func TestClient_ListZones(t *testing.T) {
	client, fakeServer := newFakeClient(t)

	fakeServer.Mux.HandleFunc("/os-availability-zone", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"availabilityZoneInfo": [
			{"zoneName": "nova", "zoneState": {"available": true}, "hosts": null},
			{"zoneName": "az-2", "zoneState": {"available": true}, "hosts": null}
		]}`)
	})

	zones, err := client.ListZones(context.Background())
	if err != nil {
		t.Fatalf("ListZones() error = %v", err)
	}

	want := []string{"nova", "az-2"}
	if !reflect.DeepEqual(zones, want) {
		t.Errorf("ListZones() = %v, want %v", zones, want)
	}
}

func TestClient_FindVolume(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantID  string
		wantErr string
	}{
		{
			name: "single match in zone",
			body: `{"volumes": [
				{"id": "vol-other-zone", "name": "data", "availability_zone": "az-2"},
				{"id": "vol-1", "name": "data", "availability_zone": "nova"}
			]}`,
			wantID: "vol-1",
		},
		{
			name:    "only in another zone",
			body:    `{"volumes": [{"id": "vol-2", "name": "data", "availability_zone": "az-2"}]}`,
			wantErr: `volume "data" not found in zone "nova"`,
		},
		{
			name:    "similar names are ignored",
			body:    `{"volumes": [{"id": "vol-3", "name": "data-old", "availability_zone": "nova"}]}`,
			wantErr: `volume "data" not found in zone "nova"`,
		},
		{
			name: "duplicate names in zone",
			body: `{"volumes": [
				{"id": "vol-4", "name": "data", "availability_zone": "nova"},
				{"id": "vol-5", "name": "data", "availability_zone": "nova"}
			]}`,
			wantErr: `2 volumes named "data" in zone "nova"`,
		},
		{
			name:    "empty listing",
			body:    `{"volumes": []}`,
			wantErr: `volume "data" not found in zone "nova"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fakeServer := newFakeClient(t)
			handleVolumes(t, fakeServer, "data", tt.body)

			vol, err := client.findVolume(context.Background(), "data", "nova")

			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("findVolume() = %q, want error %q", vol.ID, tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("findVolume() error = %q, want %q", err.Error(), tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("findVolume() error = %v", err)
			}
			if vol.ID != tt.wantID {
				t.Errorf("findVolume() = %q, want %q", vol.ID, tt.wantID)
			}
		})
	}
}
