package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateShareSum(t *testing.T) {
	s := Defaults()
	assert.NoError(t, s.Validate())

	s.PlatformSharePct = 30
	assert.Error(t, s.Validate())

	s.ShipperSharePct = 60
	assert.NoError(t, s.Validate())
}

func TestValidateRejectsNegativeFees(t *testing.T) {
	s := Defaults()
	s.PerExtraShopFee = -1
	assert.Error(t, s.Validate())
}

func TestValidateRejectsZeroShopCap(t *testing.T) {
	s := Defaults()
	s.MaxShopsPerOrder = 0
	assert.Error(t, s.Validate())
}

func TestValidatePerTypeShopCaps(t *testing.T) {
	s := Defaults()
	s.MaxShopsPerType = map[string]int32{"drink": 2}
	assert.NoError(t, s.Validate())

	s.MaxShopsPerType["food"] = 0
	assert.Error(t, s.Validate())

	s.MaxShopsPerType = map[string]int32{" ": 1}
	assert.Error(t, s.Validate())
}
