package model

type Config struct {
	DataDir       string `yaml:"data_dir"`
	Backend       string `yaml:"backend"` // csv, sqlite
	PendingFile   string `yaml:"pending_file"`
	CompletedFile string `yaml:"completed_file"`
	SQLiteFile    string `yaml:"sqlite_file"`
	ExportDir     string `yaml:"export_dir"`
	Editor        string `yaml:"editor"`
	Lock          struct {
		Enable         bool `yaml:"enable"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
		StaleSeconds   int  `yaml:"stale_seconds"`
	} `yaml:"lock"`
	List struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"list"`
}

const (
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

func DefaultConfig() Config {
	return Config{
		DataDir:       "~/.config/tsk/data",
		Backend:       BackendCSV,
		PendingFile:   "tasks.csv",
		CompletedFile: "completed_tasks.csv",
		SQLiteFile:    "tasks.db",
		ExportDir:     "~/.config/tsk/export",
		Editor:        "vim",
		Lock: struct {
			Enable         bool `yaml:"enable"`
			TimeoutSeconds int  `yaml:"timeout_seconds"`
			StaleSeconds   int  `yaml:"stale_seconds"`
		}{
			Enable:         true,
			TimeoutSeconds: 5,
			StaleSeconds:   300,
		},
		List: struct {
			PageSize int `yaml:"page_size"`
		}{
			PageSize: 20,
		},
	}
}
