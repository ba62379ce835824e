package pack

import "fmt"

// Category is the database-facing casing of Umbrella.
type Category string

const (
	CategoryHealth  Category = "Health"
	CategorySurvive Category = "Survive"
	CategoryFix     Category = "Fix"
	CategorySpeak   Category = "Speak"
)

// Valid reports whether c is one of the four known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryHealth, CategorySurvive, CategoryFix, CategorySpeak:
		return true
	}
	return false
}

// RecordUrgency is the database-facing casing of Urgency.
type RecordUrgency string

const (
	RecordUrgencyEmergency RecordUrgency = "EMERGENCY"
	RecordUrgencyWarning   RecordUrgency = "WARNING"
	RecordUrgencyInfo      RecordUrgency = "INFO"
)

// RecordStep is one step in the database-facing shape.
type RecordStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// TimerSeconds is null in stored JSON when the step has no timer.
	TimerSeconds *int `json:"timerSeconds"`
}

// Record is the authoritative server-side pack shape stored in the
// key-value store.
type Record struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	OneLiner   string        `json:"oneLiner"`
	Category   Category      `json:"category"`
	Urgency    RecordUrgency `json:"urgency"`
	EstMinutes int           `json:"estMinutes"`
	CTA        string        `json:"cta"`
	Steps      []RecordStep  `json:"steps"`
	CreatedAt  string        `json:"created_at"`
	UpdatedAt  string        `json:"updated_at"`
}

// CategoryOf maps a client umbrella to its database category.
// Unknown values map to Health.
func CategoryOf(u Umbrella) Category {
	switch u {
	case UmbrellaHealth:
		return CategoryHealth
	case UmbrellaSurvive:
		return CategorySurvive
	case UmbrellaFix:
		return CategoryFix
	case UmbrellaSpeak:
		return CategorySpeak
	default:
		return CategoryHealth
	}
}

// UmbrellaOf maps a database category to its client umbrella.
// Unknown values map to HEALTH.
func UmbrellaOf(c Category) Umbrella {
	switch c {
	case CategoryHealth:
		return UmbrellaHealth
	case CategorySurvive:
		return UmbrellaSurvive
	case CategoryFix:
		return UmbrellaFix
	case CategorySpeak:
		return UmbrellaSpeak
	default:
		return UmbrellaHealth
	}
}

// RecordUrgencyOf maps a client urgency to its database casing.
// Unknown values map to INFO.
func RecordUrgencyOf(u Urgency) RecordUrgency {
	switch u {
	case UrgencyEmergency:
		return RecordUrgencyEmergency
	case UrgencyWarning:
		return RecordUrgencyWarning
	case UrgencyInfo:
		return RecordUrgencyInfo
	default:
		return RecordUrgencyInfo
	}
}

// UrgencyOf maps a database urgency to its client casing.
// Unknown values map to info.
func UrgencyOf(r RecordUrgency) Urgency {
	switch r {
	case RecordUrgencyEmergency:
		return UrgencyEmergency
	case RecordUrgencyWarning:
		return UrgencyWarning
	case RecordUrgencyInfo:
		return UrgencyInfo
	default:
		return UrgencyInfo
	}
}

// Pack converts the record to the client-facing shape, substituting
// placeholder defaults for missing fields so the result always renders.
func (r *Record) Pack() Pack {
	p := Pack{
		ID:        r.ID,
		Title:     r.Title,
		OneLiner:  r.OneLiner,
		Umbrella:  UmbrellaOf(r.Category),
		Urgency:   UrgencyOf(r.Urgency),
		EtaMin:    r.EstMinutes,
		CTA:       r.CTA,
		Icon:      "default",
		Origin:    OriginRemote,
		CreatedAt: r.CreatedAt,
	}
	if p.ID == "" {
		p.ID = "unknown"
	}
	if p.Title == "" {
		p.Title = "Untitled Pack"
	}
	if p.OneLiner == "" {
		p.OneLiner = "Emergency guide"
	}
	if p.EtaMin == 0 {
		p.EtaMin = DefaultEtaMin
	}
	if p.CTA == "" {
		p.CTA = "Get Started"
	}
	return p
}

// ClientSteps converts the record's steps to the client-facing shape.
func (r *Record) ClientSteps() []Step {
	steps := make([]Step, 0, len(r.Steps))
	for i, s := range r.Steps {
		cs := Step{Title: s.Title, Desc: s.Description}
		if cs.Title == "" {
			cs.Title = fmt.Sprintf("Step %d", i+1)
		}
		if cs.Desc == "" {
			cs.Desc = "Follow this step"
		}
		if s.TimerSeconds != nil && *s.TimerSeconds > 0 {
			cs.TimerSec = *s.TimerSeconds
		}
		steps = append(steps, cs)
	}
	return steps
}

// RecordOf converts a client-facing pack plus steps into the database shape,
// without id or timestamps (the pack service owns those).
func RecordOf(p Pack, steps []Step) Record {
	rec := Record{
		Title:      p.Title,
		OneLiner:   p.OneLiner,
		Category:   CategoryOf(p.Umbrella),
		Urgency:    RecordUrgencyOf(p.Urgency),
		EstMinutes: p.EtaMin,
		CTA:        p.CTA,
		Steps:      make([]RecordStep, 0, len(steps)),
	}
	if rec.Title == "" {
		rec.Title = "Untitled Pack"
	}
	if rec.OneLiner == "" {
		rec.OneLiner = "Emergency guide"
	}
	if rec.EstMinutes == 0 {
		rec.EstMinutes = DefaultEtaMin
	}
	if rec.CTA == "" {
		rec.CTA = "Get Started"
	}
	for _, s := range steps {
		rs := RecordStep{Title: s.Title, Description: s.Desc}
		if rs.Title == "" {
			rs.Title = "Step"
		}
		if rs.Description == "" {
			rs.Description = "Follow this step"
		}
		if s.TimerSec > 0 {
			sec := s.TimerSec
			rs.TimerSeconds = &sec
		}
		rec.Steps = append(rec.Steps, rs)
	}
	return rec
}
