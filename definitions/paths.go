package defs

import "os"

const (
	DirMode  = os.FileMode(0700) | os.ModeDir
	FileMode = os.FileMode(0644)
)

const (
	// Driver configuration (INI today, easy to switch to TOML later).
	CellrunConfDir    = "/etc/cellrun"
	CellrunConfDropin = CellrunConfDir + "/conf.d"

	CellrunConfEnv    = "CELLRUN_CONF_FILE"
	CellrunConfDirEnv = "CELLRUN_CONF_DIR"
	DefaultConf       = "cellrun.conf"

	DefaultLogFile = "/var/log/cellrun/cellrun.log"
)
