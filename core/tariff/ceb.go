package tariff

import (
	"time"

	"solarwise/core/types"
)

// CEBDomestic2025 is the Ceylon Electricity Board domestic tariff effective January 2025.
//
// Consumption of 60 units or less is billed entirely on the low regime; above
// that the whole consumption moves to the standard regime. One fixed charge is
// levied per bill, that of the highest block reached.
func CEBDomestic2025() *Schedule {
	return &Schedule{
		Category:      CategoryDomestic,
		Version:       "2025.1.0",
		EffectiveFrom: time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Currency:      types.CurrencyLKR,
		FixedCharges:  FixedChargeHighestBlock,
		Regimes: []Regime{
			{
				Name: "low",
				Blocks: []Block{
					{Number: 1, MinUnits: types.UnitsFromInt(0), MaxUnits: unitsPtr(30), Rate: types.MustAmount("4.00"), FixedCharge: types.MustAmount("75.00")},
					{Number: 2, MinUnits: types.UnitsFromInt(31), MaxUnits: unitsPtr(60), Rate: types.MustAmount("6.00"), FixedCharge: types.MustAmount("200.00")},
				},
			},
			{
				Name: "standard",
				Blocks: []Block{
					{Number: 1, MinUnits: types.UnitsFromInt(0), MaxUnits: unitsPtr(60), Rate: types.MustAmount("11.00"), FixedCharge: types.ZeroAmount},
					{Number: 2, MinUnits: types.UnitsFromInt(61), MaxUnits: unitsPtr(90), Rate: types.MustAmount("14.00"), FixedCharge: types.MustAmount("400.00")},
					{Number: 3, MinUnits: types.UnitsFromInt(91), MaxUnits: unitsPtr(120), Rate: types.MustAmount("25.00"), FixedCharge: types.MustAmount("1000.00")},
					{Number: 4, MinUnits: types.UnitsFromInt(121), MaxUnits: unitsPtr(180), Rate: types.MustAmount("33.00"), FixedCharge: types.MustAmount("1500.00")},
					{Number: 5, MinUnits: types.UnitsFromInt(181), Rate: types.MustAmount("52.00"), FixedCharge: types.MustAmount("2000.00")},
				},
			},
		},
	}
}
