package chi

// ErrorResponseCode is the machine-readable code of an ErrorResponse.
type ErrorResponseCode string

// Error codes returned by the API.
const (
	ErrorResponseCodeBadRequest     ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized   ErrorResponseCode = "unauthorized"
	ErrorResponseCodeInvalidCorners ErrorResponseCode = "invalid_corners"
	ErrorResponseCodeInvalidOffset  ErrorResponseCode = "invalid_offset"
	ErrorResponseCodeGeodesyError   ErrorResponseCode = "geodesy_error"
	ErrorResponseCodeGeometryError  ErrorResponseCode = "geometry_error"
	ErrorResponseCodeInvalidMission ErrorResponseCode = "invalid_mission"
	ErrorResponseCodeNoLocation     ErrorResponseCode = "no_location"
	ErrorResponseCodeInternalError  ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// TargetRequest is the body of POST /api/v1/targets.
type TargetRequest struct {
	Corners [][]float64 `json:"corners"`
	Back    *float64    `json:"back,omitempty"`
	Up      *float64    `json:"up,omitempty"`
}

// ComputeTargetParams are the query parameters of POST /api/v1/targets.
// They override the body offsets.
type ComputeTargetParams struct {
	Back *float64 `form:"back,omitempty" json:"back,omitempty"`
	Up   *float64 `form:"up,omitempty" json:"up,omitempty"`
}

// TargetResponse is a solved hover target. ENU triples are east, north, up relative to Origin.
type TargetResponse struct {
	Target    [3]float64 `json:"target"`
	Origin    [3]float64 `json:"origin"`
	Centroid  [3]float64 `json:"centroid"`
	Normal    [3]float64 `json:"normal"`
	TargetENU [3]float64 `json:"target_enu"`
	Back      float64    `json:"back"`
	Up        float64    `json:"up"`
}

// WaypointRequest is an explicit mission waypoint. Omitted angles and height use mission defaults.
type WaypointRequest struct {
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
	Altitude  float64  `json:"altitude"`
	Height    *float64 `json:"height,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Pitch     *float64 `json:"pitch,omitempty"`
}

// MissionTargetRequest is a hover target solved into a mission waypoint.
type MissionTargetRequest struct {
	TargetRequest
	Height *float64 `json:"height,omitempty"`
}

// MissionRequest is the body of POST /api/v1/missions.
type MissionRequest struct {
	Author          string                 `json:"author,omitempty"`
	TakeoffRefPoint string                 `json:"takeoff_ref_point,omitempty"`
	Speed           *float64               `json:"speed,omitempty"`
	Waypoints       []WaypointRequest      `json:"waypoints,omitempty"`
	Targets         []MissionTargetRequest `json:"targets,omitempty"`
}

// LocationResponse is the GPS position read from an uploaded image.
type LocationResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Altitude  float64 `json:"altitude"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
