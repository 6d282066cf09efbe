package testlog

import (
	"testing"

	"github.com/danmuck/dhcpopt/internal/logging"
)

func TestStartUsesTestProfile(t *testing.T) {
	Start(t)
	if profile, _ := logging.Current(); profile != logging.ProfileTest {
		t.Fatalf("expected test profile, got %v", profile)
	}
}
