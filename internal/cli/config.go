package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// defaultConfigFile is read from the working directory when --config is not given.
const defaultConfigFile = ".flowlens.toml"

// fileConfig is the project configuration file. Every field has a matching
// render flag; a flag set on the command line wins over the file.
//
//	diagram_tool = "plantuml"
//	output_directory = "out"
//	output_file_name = "flows"
//	formats = ["text"]
//
//	[cache]
//	redis_addr = "localhost:6379"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
type fileConfig struct {
	DiagramTool     string   `toml:"diagram_tool"`
	GitRepo         string   `toml:"git_repo"`
	OutputDirectory string   `toml:"output_directory"`
	OutputFileName  string   `toml:"output_file_name"`
	Formats         []string `toml:"formats"`
	Workers         int      `toml:"workers"`
	MetricsFile     string   `toml:"metrics_file"`

	Cache struct {
		Disabled      bool   `toml:"disabled"`
		RedisAddr     string `toml:"redis_addr"`
		RedisPassword string `toml:"redis_password"`
		RedisDB       int    `toml:"redis_db"`
	} `toml:"cache"`

	Mongo struct {
		URI      string `toml:"uri"`
		Database string `toml:"database"`
	} `toml:"mongo"`
}

// loadConfig decodes the config file at path. An empty path falls back to
// [defaultConfigFile], which may be absent; an explicit path must exist.
// Unknown keys are rejected so typos do not go unnoticed.
func loadConfig(path string) (*fileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return &cfg, nil
}

// apply copies file values into opts for every flag the user did not set.
func (fc *fileConfig) apply(opts *renderOpts, changed func(flag string) bool) {
	setString := func(flag string, dst *string, v string) {
		if v != "" && !changed(flag) {
			*dst = v
		}
	}

	setString("diagram-tool", &opts.tool, fc.DiagramTool)
	setString("git-repo", &opts.gitRepo, fc.GitRepo)
	setString("output-directory", &opts.outputDir, fc.OutputDirectory)
	setString("output-file-name", &opts.outputName, fc.OutputFileName)
	setString("metrics-file", &opts.metricsFile, fc.MetricsFile)
	setString("redis-addr", &opts.cache.redisAddr, fc.Cache.RedisAddr)
	setString("mongo-uri", &opts.mongoURI, fc.Mongo.URI)
	setString("mongo-database", &opts.mongoDatabase, fc.Mongo.Database)

	if len(fc.Formats) > 0 && !changed("format") {
		opts.formats = strings.Join(fc.Formats, ",")
	}
	if fc.Workers != 0 && !changed("workers") {
		opts.workers = fc.Workers
	}
	if fc.Cache.Disabled && !changed("no-cache") {
		opts.cache.disabled = true
	}
	opts.cache.redisPassword = fc.Cache.RedisPassword
	opts.cache.redisDB = fc.Cache.RedisDB
}
