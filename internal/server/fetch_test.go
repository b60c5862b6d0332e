package server

import (
	"errors"
	"net/netip"
	"testing"
)

func TestPublicAddr(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr string
		want bool
	}{
		{"93.184.216.34", true},
		{"2606:2800:220:1:248:1893:25c8:1946", true},
		{"127.0.0.1", false},
		{"::1", false},
		{"10.1.2.3", false},
		{"172.16.0.9", false},
		{"192.168.1.1", false},
		{"169.254.169.254", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"::", false},
		{"224.0.0.1", false},
		{"100.64.0.1", false},
		{"::ffff:127.0.0.1", false},
	}
	for _, tt := range tests {
		if got := publicAddr(netip.MustParseAddr(tt.addr)); got != tt.want {
			t.Errorf("publicAddr(%s) = %v, want %v", tt.addr, got, tt.want)
		}
	}
}

func TestRefusePrivate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		wantErr bool
	}{
		{"93.184.216.34:443", false},
		{"127.0.0.1:8080", true},
		{"[::1]:80", true},
		{"169.254.169.254:80", true},
		{"not-an-address", true},
	}
	for _, tt := range tests {
		err := refusePrivate("tcp", tt.address, nil)
		if tt.wantErr && !errors.Is(err, ErrForbiddenSource) {
			t.Errorf("refusePrivate(%q) = %v, want ErrForbiddenSource", tt.address, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("refusePrivate(%q) unexpected error: %v", tt.address, err)
		}
	}
}
