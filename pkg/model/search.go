package model

// RetrievedPassage is one textbook chunk returned by similarity search.
// Transient, produced per tool call, never persisted.
type RetrievedPassage struct {
	SourceID        string  `db:"id"`
	Content         string  `db:"content"`
	BookTitle       string  `db:"book_title"`
	BookID          string  `db:"book_id"`
	PageStart       int     `db:"page_start"`
	PageEnd         int     `db:"page_end"`
	Chapter         string  `db:"chapter"`
	ParagraphNumber int     `db:"paragraph_number"`
	Score           float64 `db:"score"`
}

// RetrievedVideoSegment is one video transcript segment returned by
// similarity search over the video store.
type RetrievedVideoSegment struct {
	VideoID    string  `db:"video_id"`
	TimeStart  float64 `db:"time_start"`
	TimeEnd    float64 `db:"time_end"`
	Transcript string  `db:"transcript"`
	Score      float64 `db:"score"`
}
