package models

import "time"

// User represents a ConnectWork account profile. The server merges new
// profile fields over time, so unknown keys are carried alongside the typed
// fields via the raw session object (see Merge).
type User struct {
	ID         int64  `json:"id"`
	Nome       string `json:"nome"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	School     string `json:"school"`
	Course     string `json:"course"`
	UserClass  string `json:"userClass"`
	ProfileImg string `json:"profile_img"`
	BannerImg  string `json:"banner_img"`
}

// Notification kinds sent by the server.
const (
	NotificationComment = "comment"
	NotificationLike    = "like"
)

// Notification represents a single user notification.
type Notification struct {
	ID        int64     `json:"id"`
	User      string    `json:"user"`
	Kind      string    `json:"kind"`
	PostID    int64     `json:"postId"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// Post represents a feed post.
type Post struct {
	ID        int64     `json:"id"`
	AuthorID  int64     `json:"authorId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Image     string    `json:"image,omitempty"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	Comments  []Comment `json:"comments,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Comment represents a comment on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Vacancy represents a job vacancy listing.
type Vacancy struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Location    string    `json:"location"`
	Modality    string    `json:"modality"`
	Salary      string    `json:"salary,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Application represents a user's application to a vacancy.
type Application struct {
	ID        int64     `json:"id"`
	VacancyID int64     `json:"vacancyId"`
	UserID    int64     `json:"userId"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
