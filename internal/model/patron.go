package model

import "time"

// Emotion labels, in tie-break order
const (
	EmotionAnger     = "anger"
	EmotionContempt  = "contempt"
	EmotionDisgust   = "disgust"
	EmotionFear      = "fear"
	EmotionHappiness = "happiness"
	EmotionNeutral   = "neutral"
	EmotionSadness   = "sadness"
	EmotionSurprise  = "surprise"
)

// EmotionScores holds per-emotion confidence from face analysis
type EmotionScores struct {
	Anger     float32 `json:"anger"`
	Contempt  float32 `json:"contempt"`
	Disgust   float32 `json:"disgust"`
	Fear      float32 `json:"fear"`
	Happiness float32 `json:"happiness"`
	Neutral   float32 `json:"neutral"`
	Sadness   float32 `json:"sadness"`
	Surprise  float32 `json:"surprise"`
}

// Primary returns the highest scoring emotion. Ties go to the earlier label.
func (s EmotionScores) Primary() string {
	ranked := []struct {
		label string
		score float32
	}{
		{EmotionAnger, s.Anger},
		{EmotionContempt, s.Contempt},
		{EmotionDisgust, s.Disgust},
		{EmotionFear, s.Fear},
		{EmotionHappiness, s.Happiness},
		{EmotionNeutral, s.Neutral},
		{EmotionSadness, s.Sadness},
		{EmotionSurprise, s.Surprise},
	}

	best := ranked[0]
	for _, r := range ranked[1:] {
		if r.score > best.score {
			best = r
		}
	}
	return best.label
}

// FaceAttributes are the analysed attributes of a detected face
type FaceAttributes struct {
	Gender  string         `json:"gender"`
	Age     float64        `json:"age"`
	Smile   float64        `json:"smile"`
	Glasses string         `json:"glasses"`
	Emotion *EmotionScores `json:"emotion,omitempty"`
}

// Patron is one observation of a face, as submitted by a capture device
type Patron struct {
	PersistedFaceID     string         `json:"persistedFaceId"`
	Device              string         `json:"device"`
	Exhibit             string         `json:"exhibit"`
	FaceAttributes      FaceAttributes `json:"faceAttributes"`
	PrimaryEmotion      string         `json:"primaryEmotion,omitempty"`
	Time                *time.Time     `json:"time"`
	FaceMatchConfidence *float32       `json:"faceMatchConfidence"`
}

// ResolvedPrimaryEmotion returns the explicit primary emotion, falling back to
// the top emotion score when only scores were supplied.
func (p Patron) ResolvedPrimaryEmotion() string {
	if p.PrimaryEmotion != "" {
		return p.PrimaryEmotion
	}
	if p.FaceAttributes.Emotion != nil {
		return p.FaceAttributes.Emotion.Primary()
	}
	return ""
}

// Sighting is a stored patron row
type Sighting struct {
	PersistedFaceID     string    `json:"persistedFaceId"`
	SightingID          string    `json:"sightingId"`
	Device              string    `json:"device"`
	Exhibit             string    `json:"exhibit"`
	Gender              string    `json:"gender"`
	Age                 int       `json:"age"`
	PrimaryEmotion      string    `json:"primaryEmotion"`
	TimeOfSighting      time.Time `json:"timeOfSighting"`
	Smile               float64   `json:"smile"`
	Glasses             string    `json:"glasses"`
	FaceMatchConfidence float64   `json:"faceMatchConfidence"`
	StoredAt            time.Time `json:"storedAt"`
}

// MaxPatronsPerBatch bounds a single StorePatrons request
const MaxPatronsPerBatch = 500
