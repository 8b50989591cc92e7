// Package content is the typed read surface over the content repository:
// schema-mirroring structs per content type and a mapping off the raw
// delivery entries, so the untyped JSON never leaks past this boundary.
package content

import "time"

// Event is a coaching event (workshop, summit, webinar). Price 0 means
// the event is free.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	EndDate     time.Time `json:"endDate"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	Currency    string    `json:"currency"`
	Capacity    int       `json:"capacity"`
}

// BlogPost is a published article.
type BlogPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Excerpt     string    `json:"excerpt"`
	Body        string    `json:"body"`
	Author      string    `json:"author"`
	PublishDate time.Time `json:"publishDate"`
}

// Program is a multi-session coaching program.
type Program struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Duration    string  `json:"duration"`
	Price       float64 `json:"price"`
}

// Service is a single coaching offering.
type Service struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// TeamMember is a coach or staff profile.
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
	Bio  string `json:"bio"`
}

// Testimonial is a client quote.
type Testimonial struct {
	ID     string `json:"id"`
	Author string `json:"author"`
	Role   string `json:"role"`
	Quote  string `json:"quote"`
	Rating int    `json:"rating"`
}

// Slide is one homepage slider item.
type Slide struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	ButtonText string `json:"buttonText"`
	ButtonURL  string `json:"buttonUrl"`
	Order      int    `json:"order"`
}

// CompanyDetails is the singleton entry with company-wide contact info.
type CompanyDetails struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Facebook  string `json:"facebook"`
	Instagram string `json:"instagram"`
	LinkedIn  string `json:"linkedin"`
}

// Content type ids as defined in the repository schema.
const (
	TypeEvent          = "event"
	TypeBlogPost       = "blogPost"
	TypeProgram        = "program"
	TypeService        = "service"
	TypeTeamMember     = "teamMember"
	TypeTestimonial    = "testimonial"
	TypeSlider         = "slider"
	TypeCompanyDetails = "companyDetails"
)
