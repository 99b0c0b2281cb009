package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FORMAT_PLAIN = "plain"
	FORMAT_JSON  = "json"

	DEFAULT_TIMESTAMP_FORMAT = "2006-01-02 15:04:05"
)

// PlainFormatter writes "LEVL timestamp message key=value..." lines.
type PlainFormatter struct {
	TimestampFormat string
	LevelDesc       []string
}

func (f *PlainFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var sb strings.Builder

	sb.WriteString(f.LevelDesc[entry.Level])
	sb.WriteByte(' ')
	sb.WriteString(entry.Time.Format(f.TimestampFormat))
	sb.WriteByte(' ')
	sb.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, " %s=%v", k, entry.Data[k])
		}
	}

	sb.WriteByte('\n')
	return []byte(sb.String()), nil
}

func NewPlainFormatter() *PlainFormatter {
	return &PlainFormatter{
		TimestampFormat: DEFAULT_TIMESTAMP_FORMAT,
		LevelDesc:       []string{"PANC", "FATL", "ERRO", "WARN", "INFO", "DEBG", "TRAC"},
	}
}

type Config struct {
	Debug      bool   `koanf:"debug"`
	Format     string `koanf:"format"`
	Filename   string `koanf:"filename"`
	MaxSizeMB  int    `koanf:"max_size"` // MB
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age"` // Days
	Compress   bool   `koanf:"compress"`
}

func (cfg *Config) Validate() error {
	switch cfg.Format {
	case "", FORMAT_PLAIN, FORMAT_JSON:
	default:
		return fmt.Errorf("logging format should be '%s' or '%s', not '%s'", FORMAT_PLAIN, FORMAT_JSON, cfg.Format)
	}
	if cfg.MaxSizeMB < 0 || cfg.MaxBackups < 0 || cfg.MaxAgeDays < 0 {
		return fmt.Errorf("logging max_size, max_backups and max_age should not be negative")
	}
	return nil
}

func (cfg *Config) formatter() logrus.Formatter {
	if cfg.Format == FORMAT_JSON {
		return &logrus.JSONFormatter{
			TimestampFormat: DEFAULT_TIMESTAMP_FORMAT,
		}
	}
	return NewPlainFormatter()
}

// CreateLogger logs to stdout and, when a filename is configured, to a
// rotated log file.
func (cfg *Config) CreateLogger(rotate bool, wrapStdlibDefault bool) *logrus.Logger {
	return cfg.createLogger(os.Stdout, rotate, wrapStdlibDefault)
}

func (cfg *Config) createLogger(stdout io.Writer, rotate bool, wrapStdlibDefault bool) *logrus.Logger {
	output := stdout

	if cfg.Filename != "" {
		if dir := filepath.Dir(cfg.Filename); dir != "." {
			os.MkdirAll(dir, 0o755)
		}

		lumberjackLogger := &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
			LocalTime:  true,
		}

		if rotate {
			lumberjackLogger.Rotate()
		}

		// Fork writing into two outputs
		output = io.MultiWriter(output, lumberjackLogger)
	}

	logger := logrus.New()
	logger.SetFormatter(cfg.formatter())
	if cfg.Debug {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}
	logger.SetOutput(output)

	if wrapStdlibDefault {
		log.SetOutput(logger.Writer())
	}

	return logger
}

func GetDefaultConfig() Config {
	return Config{
		Format:     FORMAT_PLAIN,
		Filename:   filepath.FromSlash("logs/coastline.log"),
		MaxSizeMB:  500,
		MaxAgeDays: 7,
		MaxBackups: 20,
		Compress:   true,
	}
}
