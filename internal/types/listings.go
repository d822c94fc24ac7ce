package types

// Job is a career or job listing from the explore service.
type Job struct {
	ID          ID       `json:"id,omitempty"`
	Title       string   `json:"title"`
	Company     string   `json:"company,omitempty"`
	Location    string   `json:"location,omitempty"`
	WorkMode    string   `json:"workMode,omitempty"` // remote/hybrid/onsite
	Salary      float64  `json:"salary,omitempty"`
	Description string   `json:"description,omitempty"`
	Summary     string   `json:"summary,omitempty"`
	Skills      []string `json:"skills,omitempty"`
	URL         string   `json:"url,omitempty"`
	PostedAt    string   `json:"postedAt,omitempty"`
}

// ExploreResponse is the /explore payload.
type ExploreResponse struct {
	Jobs []Job `json:"jobs"`
}

// Trend is a skill or role trend entry.
type Trend struct {
	Name        string  `json:"name"`
	Category    string  `json:"category,omitempty"`
	Growth      float64 `json:"growth"`
	Demand      float64 `json:"demand"`
	Description string  `json:"description,omitempty"`
}

// TrendsResponse is the /trends payload.
type TrendsResponse struct {
	Trends []Trend `json:"trends"`
}
