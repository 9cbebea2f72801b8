/*
engine_test.go - Shared test fixtures

Builders for roster rows and ledger records used across the engine tests.
Follower counts are chosen so ranking order is obvious at a glance.
*/
package engine_test

import (
	"github.com/shopspring/decimal"

	"github.com/fnfcrew/assignment-engine/crew"
)

func influencer(id, name string, follower int, mlb, dx, dv, st int) crew.Influencer {
	return crew.Influencer{
		ID:       crew.InfluencerID(id),
		Name:     name,
		Follower: follower,
		UnitFee:  decimal.NewFromInt(100000),
		ContractedQty: map[crew.Brand]int{
			crew.BrandMLB: mlb,
			crew.BrandDX:  dx,
			crew.BrandDV:  dv,
			crew.BrandST:  st,
		},
		TotalContractedQty: mlb + dx + dv + st,
	}
}

func assignment(id, name string, brand crew.Brand, month crew.Month) crew.AssignmentRecord {
	return crew.AssignmentRecord{
		Brand:          brand,
		InfluencerID:   crew.InfluencerID(id),
		InfluencerName: name,
		Month:          month,
	}
}

func execution(id, name string, brand crew.Brand, month crew.Month, actual int) crew.ExecutionRecord {
	return crew.ExecutionRecord{
		Brand:          brand,
		InfluencerID:   crew.InfluencerID(id),
		InfluencerName: name,
		Month:          month,
		PlannedQty:     1,
		ActualQty:      actual,
	}
}
