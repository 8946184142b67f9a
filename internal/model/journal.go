package model

// MoveIntent is the journal entry written before a two-file move.
type MoveIntent struct {
	ID        string     `yaml:"id"`
	From      Collection `yaml:"from"`
	To        Collection `yaml:"to"`
	Task      Task       `yaml:"task"` // as it must appear in To
	CreatedAt string     `yaml:"created_at"`
}
