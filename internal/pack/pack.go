// Package pack defines the EverAid pack domain model: the client-facing
// catalog shapes, the database-facing record shape, and the total mappings
// between the two.
package pack

// Field length and range limits enforced at authoring and sanitization time.
const (
	MaxTitleLen       = 32
	MaxOneLinerLen    = 90
	MaxDescriptionLen = 300
	MaxCTALen         = 16
	MaxStepTitleLen   = 40
	MaxStepDescLen    = 140
	MaxSteps          = 10
	MaxTimerSec       = 3600
	MinEtaMin         = 1
	MaxEtaMin         = 60
	DefaultEtaMin     = 10
)

// Umbrella is the client-facing top-level category of a pack.
type Umbrella string

const (
	UmbrellaHealth  Umbrella = "HEALTH"
	UmbrellaSurvive Umbrella = "SURVIVE"
	UmbrellaFix     Umbrella = "FIX"
	UmbrellaSpeak   Umbrella = "SPEAK"
)

// Valid reports whether u is one of the four known umbrellas.
func (u Umbrella) Valid() bool {
	switch u {
	case UmbrellaHealth, UmbrellaSurvive, UmbrellaFix, UmbrellaSpeak:
		return true
	}
	return false
}

// Urgency is the client-facing urgency level of a pack.
type Urgency string

const (
	UrgencyEmergency Urgency = "emergency"
	UrgencyWarning   Urgency = "warning"
	UrgencyInfo      Urgency = "info"
)

// Valid reports whether u is one of the three known urgency levels.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyEmergency, UrgencyWarning, UrgencyInfo:
		return true
	}
	return false
}

// Origin identifies where a pack record lives. It replaces the original
// duck-typed "isCustom" checks with an explicit tag carried on the Pack.
type Origin string

const (
	OriginBuiltIn Origin = "builtin"
	OriginRemote  Origin = "remote"
	OriginCustom  Origin = "custom"
)

// Pack is a catalog entry in the client-facing shape.
type Pack struct {
	ID                  string   `json:"id"`
	Umbrella            Umbrella `json:"umbrella"`
	Title               string   `json:"title"`
	OneLiner            string   `json:"oneLiner"`
	DetailedDescription string   `json:"detailedDescription,omitempty"`
	CTA                 string   `json:"cta"`
	Urgency             Urgency  `json:"urgency"`
	EtaMin              int      `json:"etaMin"`
	Icon                string   `json:"icon"`
	IsOffline           bool     `json:"isOffline"`
	Source              string   `json:"source,omitempty"`
	Origin              Origin   `json:"origin,omitempty"`
	// CreatedAt is set for custom and imported packs (ISO 8601).
	CreatedAt string `json:"createdAt,omitempty"`
}

// Step is one entry of a pack's ordered procedure.
type Step struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
	// TimerSec is the duration of an associated countdown; zero means none.
	TimerSec int `json:"timerSec,omitempty"`
}

// StepsBlock is a pack's procedure plus denormalized summary fields,
// returned as a unit when a pack's steps are requested.
type StepsBlock struct {
	Title   string  `json:"title"`
	Urgency Urgency `json:"urgency,omitempty"`
	EtaMin  int     `json:"etaMin,omitempty"`
	Steps   []Step  `json:"steps"`
	Source  string  `json:"source,omitempty"`
}
