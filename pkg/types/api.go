package types

// PredictRequest is the body of POST /predict. Every feature field is
// required; numeric strings are accepted.
type PredictRequest struct {
	// Electricity price.
	// example: 0.014082924
	CEE float64 `json:"cEE" example:"0.014082924"`
	// Hydrogen price.
	// example: 0.056681595
	CH2 float64 `json:"cH2" example:"0.056681595"`
	// Natural gas price.
	// example: 0.0327314
	CNG float64 `json:"cNG" example:"0.0327314"`
	// Bio-methane price.
	// example: 0.079053497
	CBioCH4 float64 `json:"cbioCH4" example:"0.079053497"`
	// Biomass price.
	// example: 0.03539978
	CBiomass float64 `json:"cbiomass" example:"0.03539978"`
	// Coal price.
	// example: 0.05
	CCoal float64 `json:"cCoal" example:"0.05"`
	// Municipal solid waste price.
	// example: 0.053672485
	CMSW float64 `json:"cMSW" example:"0.053672485"`
	// CO2 price.
	// example: 0.097509193
	CCO2 float64 `json:"cCO2" example:"0.097509193"`
	// CO2 transport and storage price.
	// example: 0.095846367
	CCO2TnS float64 `json:"cCO2TnS" example:"0.095846367"`
	// Emission scenario: fossil, RE1 or RE2. Anything else means RE1.
	// example: RE1
	EmissionScenario string `json:"emission_scenario,omitempty" example:"RE1"`
}

// Result is one configuration's entry in a PredictResponse: either the three
// numbers or an error message.
type Result struct {
	// Predicted cost, rounded to 4 decimals.
	// example: 42.5
	Cost *float64 `json:"cost,omitempty" example:"42.5"`
	// Emissions for the requested scenario, rounded to 4 decimals.
	// example: 0.1234
	Emissions *float64 `json:"emissions,omitempty" example:"0.1234"`
	// Specific energy, rounded to 4 decimals.
	// example: 3.2
	SpecEnergy *float64 `json:"spec_energy,omitempty" example:"3.2"`
	// First line of the failure, at most 300 characters.
	Error string `json:"error,omitempty"`
}

// PredictResponse is returned by POST /predict.
type PredictResponse struct {
	// One entry per configuration.
	Results map[string]Result `json:"results"`
}

// ConfigurationStatus summarizes the registry record of one configuration.
type ConfigurationStatus struct {
	// example: Coal_CC_MEA
	Name string `json:"name" example:"Coal_CC_MEA"`
	// loaded, missing or corrupt.
	// example: loaded
	Status string `json:"status" example:"loaded"`
	// Kind of the invocable component.
	// example: rbf_interpolator
	Kind string `json:"kind,omitempty" example:"rbf_interpolator"`
	// Artifact path, when one was found.
	Path string `json:"path,omitempty"`
	// Load error, when the artifact is missing or corrupt.
	Error string `json:"error,omitempty"`
	// Buffers replaced by the load-time repair pass.
	// example: 2
	BuffersRepaired int `json:"buffers_repaired,omitempty" example:"2"`
}

// ConfigurationsResponse wraps the list returned by GET /configurations.
type ConfigurationsResponse struct {
	Configurations []ConfigurationStatus `json:"configurations"`
}

// SweepPoint is one evaluation along a sweep.
type SweepPoint struct {
	// Value of the swept field.
	// example: 0.05
	Value float64 `json:"value" example:"0.05"`
	// Predicted cost, unrounded.
	Cost *float64 `json:"cost,omitempty"`
	// Failure for this point.
	Error string `json:"error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Invalid JSON body
	Error string `json:"error" example:"Invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall state: ready or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// Optional top-level error message.
	Error string `json:"error,omitempty"`
	// Configurations served per request.
	// example: 32
	Configured int `json:"configured" example:"32"`
	// example: 30
	Loaded int `json:"loaded" example:"30"`
	// example: 1
	Missing int `json:"missing" example:"1"`
	// example: 1
	Corrupt int `json:"corrupt" example:"1"`
	// Directory the artifacts were loaded from.
	ModelsDir string `json:"models_dir,omitempty"`
	// Emissions table path.
	EmissionsFile string `json:"emissions_file,omitempty"`
	// Last time the emissions table was read (unix seconds).
	EmissionsLoadedUnix int64 `json:"emissions_loaded_unix,omitempty"`
	// Why the emissions table is unusable, if it is.
	EmissionsError string `json:"emissions_error,omitempty"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Prediction requests answered.
	// example: 12
	PredictionsTotal uint64 `json:"predictions_total" example:"12"`
	// Prediction requests where every configuration failed.
	FailedTotal uint64 `json:"failed_total" example:"0"`
	// Feature vectors currently cached.
	CachedVectors int `json:"cached_vectors" example:"4"`
}

// SweepRequest is the body of POST /sweep: one configuration evaluated while
// Field moves linearly from Lo to Hi in Steps points. Inputs holds the other
// feature fields, as in a predict body.
type SweepRequest struct {
	// example: Coal_CC_MEA
	Configuration string `json:"configuration" example:"Coal_CC_MEA"`
	// example: cCoal
	Field string `json:"field" example:"cCoal"`
	// example: 0.01
	Lo float64 `json:"lo" example:"0.01"`
	// example: 0.09
	Hi float64 `json:"hi" example:"0.09"`
	// example: 1000
	Steps  int            `json:"steps" example:"1000"`
	Inputs map[string]any `json:"inputs"`
}

// SweepResponse is returned by POST /sweep.
type SweepResponse struct {
	Configuration string       `json:"configuration"`
	Field         string       `json:"field"`
	Points        []SweepPoint `json:"points"`
}
