package authorize

import (
	"testing"

	"github.com/playvenue/playvenue_backend/config"
)

func TestFromCentralConfig(t *testing.T) {
	got := FromCentralConfig(config.AuthorizationConfig{
		CasbinModelPath:  "/etc/playvenue/casbin_model.conf",
		EnableAudit:      true,
		SuperadminBypass: false,
	})

	if got.CasbinModelPath != "/etc/playvenue/casbin_model.conf" {
		t.Errorf("CasbinModelPath = %q", got.CasbinModelPath)
	}
	if !got.EnableAudit {
		t.Error("EnableAudit not carried over")
	}
	if got.SuperadminBypass {
		t.Error("SuperadminBypass should stay false")
	}
}
