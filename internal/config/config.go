package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/statsheet/internal/dataset"
	"github.com/KaramelBytes/statsheet/internal/histogram"
	"github.com/KaramelBytes/statsheet/internal/report"
)

// Global configuration structure.
type Global struct {
	// Artifact locations. File names are resolved against OutDir unless absolute.
	OutDir       string `mapstructure:"out_dir" yaml:"out_dir"`
	SummaryFile  string `mapstructure:"summary_file" yaml:"summary_file"`
	PlotsDir     string `mapstructure:"plots_dir" yaml:"plots_dir"`
	ReportFile   string `mapstructure:"report_file" yaml:"report_file"`
	WorkbookFile string `mapstructure:"workbook_file" yaml:"workbook_file"`
	Title        string `mapstructure:"title" yaml:"title"`

	// Dataset parsing. Empty separators mean auto-detect.
	Delimiter  string   `mapstructure:"delimiter" yaml:"delimiter"`
	Decimal    string   `mapstructure:"decimal" yaml:"decimal"`
	Thousands  string   `mapstructure:"thousands" yaml:"thousands"`
	SheetName  string   `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int      `mapstructure:"sheet_index" yaml:"sheet_index"`
	NAValues   []string `mapstructure:"na_values" yaml:"na_values"`

	// PercentValues reads "12%" as the number 12.
	PercentValues bool `mapstructure:"percent_values" yaml:"percent_values"`

	// Rendering
	ThumbnailWidthMM float64 `mapstructure:"thumbnail_width_mm" yaml:"thumbnail_width_mm"`
	HistWidthIn      float64 `mapstructure:"hist_width_in" yaml:"hist_width_in"`
	HistHeightIn     float64 `mapstructure:"hist_height_in" yaml:"hist_height_in"`
	HistDPI          float64 `mapstructure:"hist_dpi" yaml:"hist_dpi"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"out_dir", "summary_file", "plots_dir", "report_file", "workbook_file", "title",
	"delimiter", "decimal", "thousands", "sheet_name", "sheet_index", "na_values",
	"percent_values",
	"thumbnail_width_mm", "hist_width_in", "hist_height_in", "hist_dpi",
	"log_level", "log_format",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("out_dir", ".")
	v.SetDefault("summary_file", "summary.csv")
	v.SetDefault("plots_dir", "plots")
	v.SetDefault("report_file", "Summary_A4_landscape.docx")
	v.SetDefault("workbook_file", "summary.xlsx")
	v.SetDefault("title", report.DefaultTitle)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal", ".")
	v.SetDefault("thousands", "")
	v.SetDefault("sheet_name", "")
	v.SetDefault("sheet_index", 1)
	v.SetDefault("na_values", dataset.DefaultNAValues)
	v.SetDefault("percent_values", false)
	v.SetDefault("thumbnail_width_mm", float64(report.DefaultImageWidthMM))
	h := histogram.DefaultOptions()
	v.SetDefault("hist_width_in", h.WidthIn)
	v.SetDefault("hist_height_in", h.HeightIn)
	v.SetDefault("hist_dpi", h.DPI)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Default returns the built-in configuration without reading files or env.
func Default() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func defaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".statsheet", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.statsheet/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := defaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("STATSHEET")
	v.AutomaticEnv()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		p, err := defaultPath()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(filepath.Dir(p))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a malformed one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

// Set assigns key from its string form, validating the value.
func (c *Global) Set(key, val string) error {
	switch key {
	case "out_dir":
		c.OutDir = val
	case "summary_file":
		c.SummaryFile = val
	case "plots_dir":
		c.PlotsDir = val
	case "report_file":
		c.ReportFile = val
	case "workbook_file":
		c.WorkbookFile = val
	case "title":
		c.Title = val
	case "delimiter", "decimal", "thousands":
		if _, err := parseSeparator(val); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		switch key {
		case "delimiter":
			c.Delimiter = val
		case "decimal":
			c.Decimal = val
		default:
			c.Thousands = val
		}
	case "sheet_name":
		c.SheetName = val
	case "sheet_index":
		i, err := strconv.Atoi(val)
		if err != nil || i < 1 {
			return fmt.Errorf("invalid sheet_index: %v (must be >= 1)", val)
		}
		c.SheetIndex = i
	case "percent_values":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid percent_values: %v (must be true or false)", val)
		}
		c.PercentValues = b
	case "na_values":
		var vals []string
		for _, s := range strings.Split(val, ",") {
			vals = append(vals, strings.TrimSpace(s))
		}
		c.NAValues = vals
	case "thumbnail_width_mm", "hist_width_in", "hist_height_in", "hist_dpi":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid positive number for %s: %v", key, val)
		}
		switch key {
		case "thumbnail_width_mm":
			c.ThumbnailWidthMM = f
		case "hist_width_in":
			c.HistWidthIn = f
		case "hist_height_in":
			c.HistHeightIn = f
		default:
			c.HistDPI = f
		}
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch strings.ToLower(val) {
		case "text", "json":
			c.LogFormat = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_format: %s (use text or json)", val)
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// Get returns the string form of key for display.
func (c *Global) Get(key string) string {
	num := func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
	switch key {
	case "out_dir":
		return c.OutDir
	case "summary_file":
		return c.SummaryFile
	case "plots_dir":
		return c.PlotsDir
	case "report_file":
		return c.ReportFile
	case "workbook_file":
		return c.WorkbookFile
	case "title":
		return c.Title
	case "delimiter":
		return quoteSeparator(c.Delimiter)
	case "decimal":
		return quoteSeparator(c.Decimal)
	case "thousands":
		return quoteSeparator(c.Thousands)
	case "sheet_name":
		return c.SheetName
	case "sheet_index":
		return strconv.Itoa(c.SheetIndex)
	case "na_values":
		return strings.Join(c.NAValues, ",")
	case "percent_values":
		return strconv.FormatBool(c.PercentValues)
	case "thumbnail_width_mm":
		return num(c.ThumbnailWidthMM)
	case "hist_width_in":
		return num(c.HistWidthIn)
	case "hist_height_in":
		return num(c.HistHeightIn)
	case "hist_dpi":
		return num(c.HistDPI)
	case "log_level":
		return c.LogLevel
	case "log_format":
		return c.LogFormat
	}
	return ""
}

func quoteSeparator(s string) string {
	if s == "" {
		return "(auto)"
	}
	return strconv.Quote(s)
}

// parseSeparator maps a configured separator to a rune. "" and "auto" mean
// auto-detect (0); "tab" and `\t` are accepted for the tab character.
func parseSeparator(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return 0, nil
	case "tab", `\t`:
		return '\t', nil
	case "space":
		return ' ', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%q is not a single character", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}

func (c *Global) resolve(name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.OutDir, name)
}

// SummaryPath is where the summary table artifact lives.
func (c *Global) SummaryPath() string { return c.resolve(c.SummaryFile) }

// PlotsPath is the directory holding histogram images.
func (c *Global) PlotsPath() string { return c.resolve(c.PlotsDir) }

// ReportPath is where the DOCX report is written.
func (c *Global) ReportPath() string { return c.resolve(c.ReportFile) }

// WorkbookPath is where the XLSX export is written.
func (c *Global) WorkbookPath() string { return c.resolve(c.WorkbookFile) }

// DatasetOptions converts the parsing settings. Invalid separators fall back to
// auto-detection; Set rejects them up front.
func (c *Global) DatasetOptions() dataset.Options {
	opt := dataset.DefaultOptions()
	opt.Delimiter, _ = parseSeparator(c.Delimiter)
	opt.DecimalSeparator, _ = parseSeparator(c.Decimal)
	opt.ThousandsSeparator, _ = parseSeparator(c.Thousands)
	if c.NAValues != nil {
		opt.NAValues = append([]string(nil), c.NAValues...)
	}
	opt.SheetName = c.SheetName
	opt.PercentValues = c.PercentValues
	if c.SheetIndex > 0 {
		opt.SheetIndex = c.SheetIndex
	}
	return opt
}

// HistogramOptions returns the image size settings.
func (c *Global) HistogramOptions() histogram.Options {
	return histogram.Options{WidthIn: c.HistWidthIn, HeightIn: c.HistHeightIn, DPI: c.HistDPI}
}

// ReportOptions returns the document settings.
func (c *Global) ReportOptions() report.Options {
	opt := report.DefaultOptions()
	if c.Title != "" {
		opt.Title = c.Title
	}
	if c.ThumbnailWidthMM > 0 {
		opt.ImageWidthMM = c.ThumbnailWidthMM
	}
	return opt
}
