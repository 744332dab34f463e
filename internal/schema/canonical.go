// Package schema owns the canonical column contract: the fixed, ordered
// column list every output row is projected onto, the label normalizer, the
// synonym table that maps raw spreadsheet labels to canonical names, and the
// projector that enforces the contract.
package schema

// Identity and time columns referenced by name throughout the pipeline.
const (
	ColLicense    = "License"
	ColWellID     = "Unique Well Identifier"
	ColWellName   = "Well Name"
	ColFormation  = "Formation"
	ColDate       = "Date"
	ColTime       = "Time"
	ColSourceFile = "Source File"
	ColDateTime   = "Date & Time"
)

// Canonical is the ordered canonical column list. Downstream consumers rely
// on both the set and the order; append only.
var Canonical = []string{
	ColLicense,
	ColWellID,
	ColWellName,
	ColFormation,
	ColDate,
	ColTime,
	"Flow Time",
	"Casing Press (kPa)",
	"Tubing Press (kPa)",
	"Flow Temp (C)",
	"Choke Size (mm)",
	"Orifice (mm)",
	"Static Press (kPa)",
	"Diff Press (kPa)",
	"Meter Temp (C)",
	"Total Gas Rate (e3m3/d)",
	"Total Gas Produced (e3m3)",
	"Total Gas Flared (e3m3)",
	"Total Gas Pipelined (e3m3)",
	"Water Gain (m3)",
	"Water Cum (m3)",
	"Condi Gain (m3)",
	"Condi Cum (m3)",
	"Total Fluids Gain (m3)",
	"pH",
	"Salinity (% or ppm)",
	"WGR (m3/e3m3)",
	"CGR (m3/e3m3)",
	"LGR (m3/e3m3)",
	"GOR (e3m3/m3)",
	"Cum Wells to Floc Tank",
	"Abraisives Level Flock Tank (cm)",
	"Abraisives Volume Flock Tank (m3)",
	"Abraisives to Disposal (m3)",
	"Gas Rate (Inst) (e3m3/d)",
	"BS&W",
	"Condi Rate (m3/d)",
	"Water Rate (m3/d)",
	"Measured API",
	"API Sample Temp",
	"API @60F",
	"API",
	"API Temp",
	"API@60F",
	"Sand (%)",
	"LFTR",
	"PL Pres",
	"PL Temp",
	"Gas Incin (e3m3)",
	"Gas Vented (e3m3)",
	"Total Oil Rate (m3/d)",
	"Total Condi Rate (m3/d)",
	"Total Water Rate (m3/d)",
	"Cum Oil (m3)",
	"Oil Rate (m3/d)",
	"Liquid Rate (m3/d)",
	"THT (C)",
	"CHT (C)",
	"H2S (%, ppm)",
	"N2 (%)",
	"CO2 (%)",
	"Injected/Remaining Water (m3)",
	"Gas Comp (%)",
	"Comm",
	ColSourceFile,
	"Time_diff_WR",
	"Start_depth (m)",
	"End_depth (m)",
	ColDateTime,
}

// DefaultSynonyms maps raw labels seen in field reports to canonical columns.
// Keys are normalized with Normalize when the table is built, so they may be
// written in any casing or with unit suffixes. Canonical names always map to
// themselves and need not be listed.
var DefaultSynonyms = map[string]string{
	"well name":                        ColWellName,
	"unique well id":                   ColWellID,
	"uwi":                              ColWellID,
	"choke size":                       "Choke Size (mm)",
	"static press":                     "Static Press (kPa)",
	"diff press":                       "Diff Press (kPa)",
	"meter temp":                       "Meter Temp (C)",
	"total gas produced":               "Total Gas Produced (e3m3)",
	"total gas flared":                 "Total Gas Flared (e3m3)",
	"total gas pipelined":              "Total Gas Pipelined (e3m3)",
	"water gain":                       "Water Gain (m3)",
	"water cum":                        "Water Cum (m3)",
	"condi gain":                       "Condi Gain (m3)",
	"condi cum":                        "Condi Cum (m3)",
	"total fluids gain":                "Total Fluids Gain (m3)",
	"cum wells to floc tank":           "Cum Wells to Floc Tank",
	"abraisives level flock tank (cm)": "Abraisives Level Flock Tank (cm)",
	"abraisives volume flock tank":     "Abraisives Volume Flock Tank (m3)",
	"abraisives to disposal":           "Abraisives to Disposal (m3)",
	"gas rate (inst)":                  "Gas Rate (Inst) (e3m3/d)",
	"water rate":                       "Water Rate (m3/d)",
	"condi rate":                       "Condi Rate (m3/d)",
	"measured api":                     "Measured API",
	"api sample temp":                  "API Sample Temp",
	"sand":                             "Sand (%)",
	"pipeline pressure":                "PL Pres",
	"pipeline temp":                    "PL Temp",
	"flow time":                        "Flow Time",
	"h2s":                              "H2S (%, ppm)",
	"casing press":                     "Casing Press (kPa)",
	"tubing press":                     "Tubing Press (kPa)",
	"flow temp":                        "Flow Temp (C)",
	"orifice":                          "Orifice (mm)",
	"ph":                               "pH",
	"salinity":                         "Salinity (% or ppm)",
	"wgr":                              "WGR (m3/e3m3)",
	"cgr":                              "CGR (m3/e3m3)",
	"lgr":                              "LGR (m3/e3m3)",
	"gor":                              "GOR (e3m3/m3)",
	"bs&w":                             "BS&W",
	"lftr":                             "LFTR",
	"gas incin":                        "Gas Incin (e3m3)",
	"gas vented":                       "Gas Vented (e3m3)",
	"total oil rate":                   "Total Oil Rate (m3/d)",
	"total condi rate":                 "Total Condi Rate (m3/d)",
	"total water rate":                 "Total Water Rate (m3/d)",
	"cum oil":                          "Cum Oil (m3)",
	"oil rate":                         "Oil Rate (m3/d)",
	"liquid rate":                      "Liquid Rate (m3/d)",
	"tht":                              "THT (C)",
	"cht":                              "CHT (C)",
	"n2":                               "N2 (%)",
	"co2":                              "CO2 (%)",
	"gas comp":                         "Gas Comp (%)",
	"total gas rate":                   "Total Gas Rate (e3m3/d)",
	"api temp":                         "API Temp",
	"api@60f":                          "API@60F",
	"api @60f":                         "API @60F",
	"source file":                      ColSourceFile,
}

// IsCanonical reports whether name is a member of Canonical.
func IsCanonical(name string) bool {
	for _, c := range Canonical {
		if c == name {
			return true
		}
	}
	return false
}

// Column sets used by the numeric cleanser.
var (
	// DefaultInterpolate are gap-interpolated after the first non-zero value.
	DefaultInterpolate = []string{
		"Static Press (kPa)",
		"Diff Press (kPa)",
		"Meter Temp (C)",
		"Total Gas Rate (e3m3/d)",
		"Total Gas Produced (e3m3)",
		"Total Gas Flared (e3m3)",
		"Total Gas Pipelined (e3m3)",
		"Water Gain (m3)",
		"Water Cum (m3)",
		"Condi Gain (m3)",
		"Condi Cum (m3)",
		"Total Fluids Gain (m3)",
		"pH",
		"Salinity (% or ppm)",
		"WGR (m3/e3m3)",
		"CGR (m3/e3m3)",
		"LGR (m3/e3m3)",
		"Cum Wells to Floc Tank",
		"Abraisives Level Flock Tank (cm)",
		"Abraisives Volume Flock Tank (m3)",
		"Abraisives to Disposal (m3)",
		"Gas Rate (Inst) (e3m3/d)",
		"BS&W",
		"Condi Rate (m3/d)",
		"Water Rate (m3/d)",
		"API Sample Temp",
		"API @60F",
		"LFTR",
		"PL Pres",
		"PL Temp",
	}

	// DefaultCumulative is the triple whose simultaneous stasis marks a
	// duplicate instrument snapshot.
	DefaultCumulative = []string{
		"Total Gas Produced (e3m3)",
		"Condi Cum (m3)",
		"Water Cum (m3)",
	}

	// DefaultQuality are forward/back-filled after dropping non-positive values.
	DefaultQuality = []string{
		"pH",
		"Salinity (% or ppm)",
		"Measured API",
		"Choke Size (mm)",
	}
)
