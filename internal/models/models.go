package models

import (
	"time"
)

// User represents a user in the system
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"` // Password hash, not returned in JSON
	Keys      int64     `json:"keys"`
	CreatedAt time.Time `json:"createdAt"`
}

// Set is a single set within an exercise. Weight and reps are kept as
// strings: they mirror free-text inputs on the client and are not validated.
type Set struct {
	Weight   string `json:"weight"`
	Reps     string `json:"reps"`
	Previous string `json:"previous,omitempty"`
}

// Exercise is one entry in a workout session
type Exercise struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Sets      []Set  `json:"sets"`
	Expanded  bool   `json:"expanded"`
	Completed bool   `json:"completed"`
}

// WorkoutSession is the per-date workout document, keyed by YYYY-MM-DD
type WorkoutSession struct {
	Date      string     `json:"date"`
	Exercises []Exercise `json:"exercises"`
	Completed bool       `json:"completed"`
}

// Reward is a studio-class reward from the catalog. Field names match the
// documents as the mobile client stored them, capitalization included.
type Reward struct {
	ID          string `json:"id"`
	Name        string `json:"Name"`
	ClassName   string `json:"ClassName"`
	Location    string `json:"Location"`
	Instructor  string `json:"Instructor"`
	Date        string `json:"Date"`
	Description string `json:"Description"`
	Cost        int64  `json:"Cost"`
}

// Location is a studio location shown on the map screen
type Location struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Tasks     []string `json:"tasks,omitempty"`
}
