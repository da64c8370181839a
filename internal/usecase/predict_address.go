package usecase

import (
	"github.com/gnosisguild/mech-go/internal/domain"
	"github.com/gnosisguild/mech-go/internal/domain/models"
)

// PredictAddress computes where mechs and mastercopies land without touching
// the network
type PredictAddress struct {
	planner *Planner
}

// NewPredictAddress creates a new PredictAddress use case
func NewPredictAddress(planner *Planner) *PredictAddress {
	return &PredictAddress{planner: planner}
}

// Mech returns the planned deployment of the mech described by dc
func (uc *PredictAddress) Mech(dc domain.DeployContext) (*models.Deployment, error) {
	return uc.planner.PlanMech(dc)
}

// Mastercopies returns the planned deployment of each variant's mastercopy,
// plus the mech factory when its artifact is available
func (uc *PredictAddress) Mastercopies(variants []domain.MechVariant, withFactory bool) ([]*models.Deployment, error) {
	if len(variants) == 0 {
		variants = domain.AllVariants
	}

	var out []*models.Deployment
	if withFactory {
		d, err := uc.planner.PlanMechFactory()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	for _, v := range variants {
		d, err := uc.planner.PlanMastercopy(v)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
