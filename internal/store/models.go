package store

import "time"

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	Role         string    `json:"role"`
	AvatarURL    *string   `json:"avatar_url"`
	CreatedAt    time.Time `json:"created_at"`
}

type Question struct {
	Content            string   `json:"content"`
	IsKeyQuestion      bool     `json:"is_key_question"`
	FollowUpDirections []string `json:"follow_up_directions"`
}

type Module struct {
	Title     string     `json:"title"`
	Questions []Question `json:"questions"` // insertion order preserved
}

type Outline struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	CreatorID   int64     `json:"creator_id,omitempty"`
	Modules     []Module  `json:"modules"` // insertion order preserved
	CreatedAt   time.Time `json:"created_at"`
}

type PersonaConfig struct {
	ID           int64          `json:"id"`
	Name         string         `json:"name"`
	RoleSettings map[string]any `json:"role_settings"`
	Strategy     map[string]any `json:"strategy"`
	OutlineID    *int64         `json:"outline_id"`
}

type Project struct {
	ID        string    `json:"id"` // UUID
	Name      string    `json:"name"`
	OutlineID int64     `json:"outline_id"`
	PersonaID int64     `json:"persona_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ProjectSummary is a Project joined with its outline title for list views.
type ProjectSummary struct {
	Project
	OutlineTitle string `json:"outline_title"`
}

type Participant struct {
	ID             string         `json:"id"` // UUID
	ProjectID      string         `json:"project_id"`
	CreatedAt      time.Time      `json:"created_at"`
	LastAccessedAt time.Time      `json:"last_accessed_at"`
	Metadata       map[string]any `json:"metadata"`
}

const (
	RoleUser = "user"
	RoleAI   = "ai"
)

type TranscriptEntry struct {
	Role      string    `json:"role"` // "user" or "ai"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	ID              string            `json:"id"` // UUID
	ProjectID       string            `json:"project_id"`
	ParticipantID   *string           `json:"participant_id"`
	IntervieweeInfo map[string]any    `json:"interviewee_info"`
	Transcript      []TranscriptEntry `json:"transcript"` // append-only
	StartTime       time.Time         `json:"start_time"`
	EndTime         *time.Time        `json:"end_time"`
	ExpiresAt       time.Time         `json:"expires_at"`
	IsStarred       bool              `json:"is_starred"`
	Note            *string           `json:"note"`
}
