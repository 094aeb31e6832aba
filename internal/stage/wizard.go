package stage

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentx-labs/extkit/internal/config"
	"github.com/agentx-labs/extkit/internal/process"
)

var actionPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)

// installerScript is the host installer entry point, relative to the
// working tree.
const installerScript = "install/cli.php"

// Param is one named argument of an installer step.
type Param struct {
	Key      string
	Value    string
	Required bool
	Secret   bool
}

// InstallStep is a single invocation of the host's command-line installer.
// The installer keeps its own state on disk between steps, so a step is
// only meaningful after every earlier step has succeeded.
type InstallStep struct {
	Action string
	Params []Param
	Quiet  bool
}

// InstallSteps returns the installer steps for cfg in the order they must run.
func InstallSteps(cfg config.Config) []InstallStep {
	db := cfg.Database
	in := cfg.Install

	hostName := db.Host
	if db.Port != 0 {
		hostName = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
	}

	return []InstallStep{
		{Action: "step1", Params: []Param{
			{Key: "user-lang", Value: in.Language, Required: true},
		}},
		{Action: "setupConfirmation", Params: []Param{
			{Key: "host-name", Value: hostName, Required: true},
			{Key: "db-name", Value: db.Name, Required: true},
			{Key: "db-user-name", Value: db.User, Required: true},
			{Key: "db-user-password", Value: db.Password, Secret: true},
		}},
		{Action: "checkPermission", Quiet: true},
		{Action: "saveSettings", Params: []Param{
			{Key: "site-url", Value: in.SiteURL, Required: true},
			{Key: "default-permissions-user", Value: in.DefaultOwner},
			{Key: "default-permissions-group", Value: in.DefaultGroup},
		}},
		{Action: "buildDatabase", Quiet: true},
		{Action: "createUser", Params: []Param{
			{Key: "user-name", Value: in.AdminUsername, Required: true},
			{Key: "user-pass", Value: in.AdminPassword, Required: true, Secret: true},
		}},
		{Action: "finish"},
	}
}

// Validate checks the step before it is handed to the installer.
func (s InstallStep) Validate() error {
	if !actionPattern.MatchString(s.Action) {
		return fmt.Errorf("invalid installer action %q", s.Action)
	}
	for _, p := range s.Params {
		if p.Key == "" {
			return fmt.Errorf("installer action %s: empty parameter name", s.Action)
		}
		if p.Required && strings.TrimSpace(p.Value) == "" {
			return fmt.Errorf("installer action %s: %s is required", s.Action, p.Key)
		}
		if strings.ContainsRune(p.Value, 0) {
			return fmt.Errorf("installer action %s: %s contains a NUL byte", s.Action, p.Key)
		}
	}
	return nil
}

// Encode renders the parameters as a URL query, in declaration order.
func (s InstallStep) Encode() string {
	parts := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// Command returns the process invocation for the step, run in dir.
func (s InstallStep) Command(dir string) process.Command {
	args := []string{installerScript, "-a", s.Action}
	if len(s.Params) > 0 {
		args = append(args, "-d", s.Encode())
	}

	var secrets []string
	for _, p := range s.Params {
		if p.Secret && p.Value != "" {
			secrets = append(secrets, p.Value)
			if escaped := url.QueryEscape(p.Value); escaped != p.Value {
				secrets = append(secrets, escaped)
			}
		}
	}

	return process.Command{
		Name:    "php",
		Args:    args,
		Dir:     dir,
		Quiet:   s.Quiet,
		Secrets: secrets,
	}
}
