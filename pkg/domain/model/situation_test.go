package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

func highwayCruising() *model.OperationalSituation {
	return &model.OperationalSituation{
		ID:                 "HWY-001",
		Group:              types.SituationGroupHighway,
		Name:               "Highway Cruising",
		Exposure:           types.ExposureE4,
		ExposurePercentage: ">10% of operating time",
		Description:        "Steady driving at highway speed",
	}
}

func heavyRain() *model.OperationalSituation {
	return &model.OperationalSituation{
		ID:       "ENV-002",
		Group:    types.SituationGroupEnvironmental,
		Name:     "Heavy Rain",
		Exposure: types.ExposureE2,
	}
}

func iceAndSnow() *model.OperationalSituation {
	return &model.OperationalSituation{
		ID:       "ENV-004",
		Group:    types.SituationGroupEnvironmental,
		Name:     "Ice and Packed Snow",
		Exposure: types.ExposureE2,
	}
}

func TestCatalog_AddAndGet(t *testing.T) {
	cat := model.NewCatalog()
	gt.NoError(t, cat.Add(highwayCruising())).Required()
	gt.NoError(t, cat.Add(heavyRain())).Required()

	got, err := cat.Get("HWY-001")
	gt.NoError(t, err).Required()
	gt.Value(t, got.Name).Equal("Highway Cruising")

	_, err = cat.Get("HWY-999")
	gt.Error(t, err).Is(model.ErrSituationNotFound)

	gt.Number(t, cat.Len()).Equal(2)
}

func TestCatalog_RejectsDuplicatesAndInvalid(t *testing.T) {
	cat := model.NewCatalog()
	gt.NoError(t, cat.Add(highwayCruising())).Required()

	t.Run("duplicate ID", func(t *testing.T) {
		gt.Value(t, cat.Add(highwayCruising())).NotNil()
	})

	t.Run("malformed ID", func(t *testing.T) {
		bad := heavyRain()
		bad.ID = "env2"
		gt.Value(t, cat.Add(bad)).NotNil()
	})

	t.Run("missing name", func(t *testing.T) {
		bad := heavyRain()
		bad.Name = ""
		gt.Value(t, cat.Add(bad)).NotNil()
	})

	t.Run("invalid exposure", func(t *testing.T) {
		bad := heavyRain()
		bad.Exposure = "E9"
		err := cat.Add(bad)
		gt.Error(t, err).Is(types.ErrInvalidExposure)
	})
}

func TestCatalog_ListGroup(t *testing.T) {
	cat := model.NewCatalog()
	gt.NoError(t, cat.Add(highwayCruising())).Required()
	gt.NoError(t, cat.Add(heavyRain())).Required()
	gt.NoError(t, cat.Add(iceAndSnow())).Required()

	env := cat.ListGroup(types.SituationGroupEnvironmental)
	gt.Number(t, len(env)).Equal(2)
	gt.Value(t, env[0].ID).Equal(model.SituationID("ENV-002"))
	gt.Value(t, env[1].ID).Equal(model.SituationID("ENV-004"))

	gt.Number(t, len(cat.ListGroup(types.SituationGroupUrban))).Equal(0)
}

func TestCatalog_Combine(t *testing.T) {
	cat := model.NewCatalog()
	gt.NoError(t, cat.Add(highwayCruising())).Required()
	gt.NoError(t, cat.Add(heavyRain())).Required()
	gt.NoError(t, cat.Add(iceAndSnow())).Required()

	combined, err := cat.Combine("Winter highway driving", []model.SituationID{"HWY-001", "ENV-004"})
	gt.NoError(t, err).Required()
	gt.Value(t, combined.Exposure).Equal(types.ExposureE2)
	gt.Number(t, len(combined.Components)).Equal(2)
	gt.Value(t, combined.Name).Equal("Winter highway driving")
}

func TestCatalog_CombineErrors(t *testing.T) {
	cat := model.NewCatalog()
	gt.NoError(t, cat.Add(highwayCruising())).Required()

	t.Run("unknown member", func(t *testing.T) {
		_, err := cat.Combine("x", []model.SituationID{"HWY-001", "ZZZ-001"})
		gt.Error(t, err).Is(model.ErrSituationNotFound)
	})

	t.Run("empty set", func(t *testing.T) {
		_, err := cat.Combine("x", nil)
		gt.Error(t, err).Is(types.ErrEmptyExposureSet)
	})
}

func TestSituationID_Validate(t *testing.T) {
	gt.NoError(t, model.SituationID("URB-001").Validate())
	gt.NoError(t, model.SituationID("SPC-003").Validate())

	gt.Value(t, model.SituationID("").Validate()).NotNil()
	gt.Value(t, model.SituationID("urb-001").Validate()).NotNil()
	gt.Value(t, model.SituationID("URB001").Validate()).NotNil()
	gt.Value(t, model.SituationID("URB-1").Validate()).NotNil()
}
