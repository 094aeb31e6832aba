package stage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentx-labs/extkit/internal/config"
	"github.com/agentx-labs/extkit/internal/layout"
	"github.com/agentx-labs/extkit/internal/platform"
)

// RenderSettings renders the host settings file for db as a PHP array.
func RenderSettings(db config.Database) string {
	port := "null"
	if db.Port != 0 {
		port = strconv.Itoa(db.Port)
	}
	charset := "null"
	if db.Charset != "" {
		charset = phpString(db.Charset)
	}

	var b strings.Builder
	b.WriteString("<?php\n")
	b.WriteString("return [\n")
	b.WriteString("    'database' => [\n")
	fmt.Fprintf(&b, "        'host' => %s,\n", phpString(db.Host))
	fmt.Fprintf(&b, "        'port' => %s,\n", port)
	fmt.Fprintf(&b, "        'charset' => %s,\n", charset)
	fmt.Fprintf(&b, "        'dbname' => %s,\n", phpString(db.Name))
	fmt.Fprintf(&b, "        'user' => %s,\n", phpString(db.User))
	fmt.Fprintf(&b, "        'password' => %s,\n", phpString(db.Password))
	b.WriteString("    ],\n")
	b.WriteString("    'isDeveloperMode' => true,\n")
	b.WriteString("    'useCache' => true,\n")
	b.WriteString("];\n")
	return b.String()
}

// phpString quotes s as a single-quoted PHP literal.
func phpString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return "'" + s + "'"
}

func writeSettings(env *Env) error {
	path := env.Layout.SettingsFile()
	if err := platform.RemoveFile(path); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), layout.DirPerm); err != nil {
		return &platform.IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, []byte(RenderSettings(env.Config.Database)), layout.FilePerm); err != nil {
		return &platform.IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
