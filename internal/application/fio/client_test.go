package fio

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStorage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/molp", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{
				"StorageId": "store-1",
				"AddressableId": "addr-1",
				"LocationNaturalId": "UV-351a",
				"Type": "STORE",
				"Timestamp": "2026-03-01T10:30:00.123456",
				"StorageItems": [{"MaterialTicker": "RAT", "MaterialAmount": 600}]
			}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	storages, err := client.GetStorage("molp")
	require.NoError(t, err)
	require.Len(t, storages, 1)
	assert.Equal(t, "UV-351a", storages[0].LocationNaturalID)
	require.Len(t, storages[0].Items, 1)
	assert.Equal(t, int64(600), storages[0].Items[0].MaterialAmount)
}

func TestGetStorage_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	_, err := client.GetStorage("molp")
	require.Error(t, err)
}
