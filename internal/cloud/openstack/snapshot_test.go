package openstack

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/aravindh-murugesan/gce-disk-snapshot-go/internal/cloud"
	th "github.com/gophercloud/gophercloud/v2/testhelper"
)

const volumeListing = `{"volumes": [{"id": "vol-1", "name": "data", "availability_zone": "nova"}]}`

func TestClient_CreateSnapshot(t *testing.T) {
	client, fakeServer := newFakeClient(t)
	handleVolumes(t, fakeServer, "data", volumeListing)

	fakeServer.Mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "POST")
		th.TestJSONRequest(t, r, `{
			"snapshot": {
				"volume_id": "vol-1",
				"force": true,
				"name": "data-20230105-0703",
				"description": "Created by gce-disk-snapshot"
			}
		}`)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{"snapshot": {"id": "snap-1", "name": "data-20230105-0703", "volume_id": "vol-1", "status": "creating"}}`)
	})

	polls := 0
	fakeServer.Mux.HandleFunc("/snapshots/snap-1", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		polls++

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"snapshot": {"id": "snap-1", "name": "data-20230105-0703", "volume_id": "vol-1", "status": "available"}}`)
	})

	if err := client.CreateSnapshot(context.Background(), "data", "data-20230105-0703", "nova"); err != nil {
		t.Fatalf("CreateSnapshot() error = %v", err)
	}
	if polls == 0 {
		t.Error("CreateSnapshot() returned without waiting for the snapshot status")
	}
}

func TestClient_CreateSnapshot_VolumeNotFound(t *testing.T) {
	client, fakeServer := newFakeClient(t)
	handleVolumes(t, fakeServer, "data", `{"volumes": []}`)

	fakeServer.Mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
	})

	err := client.CreateSnapshot(context.Background(), "data", "data-20230105-0703", "nova")
	if err == nil {
		t.Fatal("CreateSnapshot() expected an error")
	}
	if !strings.Contains(err.Error(), `volume "data" not found in zone "nova"`) {
		t.Errorf("CreateSnapshot() error = %q", err.Error())
	}
}

func TestClient_CreateSnapshot_APIError(t *testing.T) {
	client, fakeServer := newFakeClient(t)
	handleVolumes(t, fakeServer, "data", volumeListing)

	body := `{"overLimit": {"message": "SnapshotLimitExceeded"}}`
	fakeServer.Mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		fmt.Fprint(w, body)
	})

	err := client.CreateSnapshot(context.Background(), "data", "data-20230105-0703", "nova")

	var cmdErr *cloud.CommandError
	if !errors.As(err, &cmdErr) {
		t.Fatalf("error type = %T, want *cloud.CommandError", err)
	}
	if cmdErr.ExitCode != http.StatusRequestEntityTooLarge {
		t.Errorf("ExitCode = %d, want %d", cmdErr.ExitCode, http.StatusRequestEntityTooLarge)
	}
	if cmdErr.Stderr != body {
		t.Errorf("Stderr = %q, want %q", cmdErr.Stderr, body)
	}
	if !reflect.DeepEqual(cmdErr.Args, []string{"CreateVolumeSnapshot"}) {
		t.Errorf("Args = %v", cmdErr.Args)
	}
}

func TestClient_ListSnapshots(t *testing.T) {
	client, fakeServer := newFakeClient(t)

	fakeServer.Mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
		th.TestMethod(t, r, "GET")
		if r.URL.RawQuery != "" {
			t.Errorf("query = %q, want no server side filter", r.URL.RawQuery)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"snapshots": [
			{"id": "s1", "name": "data-20230102-0000", "status": "available"},
			{"id": "s2", "name": "data-manual", "status": "available"},
			{"id": "s3", "name": "data-20230101-0000", "status": "available"},
			{"id": "s4", "name": "database-20230101-0000", "status": "available"}
		]}`)
	})

	names, err := client.ListSnapshots(context.Background(), cloud.SnapshotPattern("data"))
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}

	want := []string{"data-20230102-0000", "data-20230101-0000"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ListSnapshots() = %v, want %v", names, want)
	}
}

func TestClient_DeleteSnapshot(t *testing.T) {
	tests := []struct {
		name        string
		listing     string
		wantDeleted string
		wantErr     string
	}{
		{
			name:        "single match",
			listing:     `{"snapshots": [{"id": "snap-1", "name": "data-20230101-0000"}]}`,
			wantDeleted: "snap-1",
		},
		{
			name:    "no snapshot with the name",
			listing: `{"snapshots": []}`,
			wantErr: `expected one snapshot named "data-20230101-0000", found 0`,
		},
		{
			name: "duplicate names",
			listing: `{"snapshots": [
				{"id": "snap-1", "name": "data-20230101-0000"},
				{"id": "snap-2", "name": "data-20230101-0000"}
			]}`,
			wantErr: `expected one snapshot named "data-20230101-0000", found 2`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, fakeServer := newFakeClient(t)

			fakeServer.Mux.HandleFunc("/snapshots", func(w http.ResponseWriter, r *http.Request) {
				th.TestMethod(t, r, "GET")
				if got := r.URL.Query().Get("name"); got != "data-20230101-0000" {
					t.Errorf("name filter = %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprint(w, tt.listing)
			})

			var deleted []string
			fakeServer.Mux.HandleFunc("/snapshots/", func(w http.ResponseWriter, r *http.Request) {
				th.TestMethod(t, r, "DELETE")
				deleted = append(deleted, strings.TrimPrefix(r.URL.Path, "/snapshots/"))
				w.WriteHeader(http.StatusAccepted)
			})

			err := client.DeleteSnapshot(context.Background(), "data-20230101-0000")

			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("DeleteSnapshot() error = %v, want %q", err, tt.wantErr)
				}
				if len(deleted) != 0 {
					t.Errorf("deleted %v, want no deletion", deleted)
				}
				return
			}

			if err != nil {
				t.Fatalf("DeleteSnapshot() error = %v", err)
			}
			if !reflect.DeepEqual(deleted, []string{tt.wantDeleted}) {
				t.Errorf("deleted %v, want [%s]", deleted, tt.wantDeleted)
			}
		})
	}
}
