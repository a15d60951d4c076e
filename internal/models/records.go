package models

import "time"

type Expense struct {
	Ref
	UserID string  `json:"userId,omitempty"`
	Title  string  `json:"title" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
	Date   string  `json:"date" validate:"required,datestr"`
}

type Task struct {
	Ref
	UserID    string `json:"userId,omitempty"`
	Title     string `json:"title" validate:"required"`
	DueDate   string `json:"dueDate" validate:"required,datestr"`
	Time      string `json:"time,omitempty" validate:"omitempty,clock"`
	Completed bool   `json:"completed"`
}

type Event struct {
	Ref
	UserID      string `json:"userId,omitempty"`
	Name        string `json:"name" validate:"required"`
	Date        string `json:"date" validate:"required,datestr"`
	Time        string `json:"time,omitempty" validate:"omitempty,clock"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}

type MoodLog struct {
	Ref
	UserID      string `json:"userId,omitempty"`
	Mood        string `json:"mood" validate:"required,oneof=Happy Neutral Sad Stressed"`
	Date        string `json:"date" validate:"required,datestr"`
	Note        string `json:"note,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
	Affirmation string `json:"affirmation,omitempty"`
}

type DiaryEntry struct {
	Ref
	UserID  string `json:"userId,omitempty"`
	Title   string `json:"title"`
	Date    string `json:"date" validate:"required,datestr"`
	Message string `json:"message" validate:"required"`
}

type Comment struct {
	ID        string    `json:"_id,omitempty"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Text      string    `json:"text" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
}

type FeedPost struct {
	Ref
	UserID           string    `json:"userId,omitempty"`
	UserName         string    `json:"userName"`
	Text             string    `json:"text"`
	Category         string    `json:"category" validate:"omitempty,oneof=general event"`
	EventName        string    `json:"eventName,omitempty"`
	EventDate        string    `json:"eventDate,omitempty" validate:"omitempty,datestr"`
	EventTime        string    `json:"eventTime,omitempty" validate:"omitempty,clock"`
	EventDescription string    `json:"eventDescription,omitempty"`
	EventColor       string    `json:"eventColor,omitempty" validate:"omitempty,hexcolor"`
	MediaData        string    `json:"mediaData,omitempty"`
	MediaType        string    `json:"mediaType,omitempty"`
	FileName         string    `json:"fileName,omitempty"`
	FileSize         int64     `json:"fileSize,omitempty"`
	Likes            []string  `json:"likes"`
	Comments         []Comment `json:"comments"`
	Timestamp        time.Time `json:"timestamp"`
}

// LikedBy reports whether userID is among the post's likes.
func (p FeedPost) LikedBy(userID string) bool {
	for _, id := range p.Likes {
		if id == userID {
			return true
		}
	}
	return false
}

// ToggleLike adds or removes userID from the likes list.
func (p *FeedPost) ToggleLike(userID string) {
	if !p.LikedBy(userID) {
		p.Likes = append(p.Likes, userID)
		return
	}
	likes := make([]string, 0, len(p.Likes))
	for _, id := range p.Likes {
		if id != userID {
			likes = append(likes, id)
		}
	}
	p.Likes = likes
}

// FindComment returns the index of the comment with the given id, or -1.
func (p FeedPost) FindComment(id string) int {
	for i, c := range p.Comments {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Note is kept on the device only; it never reaches a service.
type Note struct {
	Ref
	Text      string    `json:"text" validate:"required"`
	Date      string    `json:"date" validate:"required,datestr"`
	FileData  string    `json:"fileData,omitempty"`
	FileName  string    `json:"fileName,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
