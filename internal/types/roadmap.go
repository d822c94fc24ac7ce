package types

// RoadmapStep is one milestone in a learning roadmap.
type RoadmapStep struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Due         string `json:"due,omitempty"` // RFC 3339 or YYYY-MM-DD
}

// Roadmap is a career roadmap owned by the roadmap service.
type Roadmap struct {
	ID    ID            `json:"id,omitempty"`
	Title string        `json:"title"`
	Goal  string        `json:"goal,omitempty"`
	Steps []RoadmapStep `json:"steps,omitempty"`
}

// RoadmapsResponse is the /roadmaps payload.
type RoadmapsResponse struct {
	Roadmaps []Roadmap `json:"roadmaps"`
}

// CreateRoadmapRequest asks the roadmap service to generate a roadmap.
type CreateRoadmapRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
	Goal  string `json:"goal,omitempty" validate:"omitempty,max=2000"`
}

// SyncResult reports what was pushed to Google Tasks.
type SyncResult struct {
	Created []string `json:"created"`
	Skipped []string `json:"skipped,omitempty"`
}
