package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

const (
	ToolShell = "shell"

	defaultShellTimeout = 30 * time.Second
	maxShellTimeout     = 120 * time.Second
)

// Base commands that may be executed.
var shellAllowedCommands = map[string]struct{}{
	"ls": {}, "pwd": {}, "whoami": {}, "date": {}, "uptime": {}, "df": {},
	"free": {}, "ps": {}, "cat": {}, "grep": {}, "find": {}, "wc": {},
	"head": {}, "tail": {}, "sort": {}, "uniq": {}, "echo": {}, "printf": {},
	"which": {}, "whereis": {}, "file": {}, "stat": {}, "du": {}, "top": {},
	"uname": {}, "id": {}, "groups": {}, "env": {}, "git": {}, "python": {},
	"python3": {}, "pip": {}, "pip3": {}, "node": {}, "npm": {},
	"docker": {}, "kubectl": {}, "curl": {}, "wget": {}, "ping": {},
	"nslookup": {}, "netstat": {}, "ss": {}, "lsof": {}, "lsblk": {},
}

// Destructive commands, rejected even when an allow-list entry overlaps.
var shellDeniedCommands = map[string]struct{}{
	"rm": {}, "rmdir": {}, "mv": {}, "cp": {}, "chmod": {}, "chown": {},
	"chgrp": {}, "sudo": {}, "su": {}, "passwd": {}, "useradd": {},
	"userdel": {}, "usermod": {}, "groupadd": {}, "groupdel": {},
	"fdisk": {}, "mkfs": {}, "format": {}, "mount": {}, "umount": {},
	"kill": {}, "killall": {}, "pkill": {}, "shutdown": {}, "reboot": {},
	"halt": {}, "poweroff": {}, "init": {}, "systemctl": {}, "service": {},
	"crontab": {}, "at": {}, "batch": {}, "nohup": {}, "screen": {},
	"tmux": {}, "iptables": {}, "ufw": {}, "firewall": {},
}

// Secondary substring scan: argument smuggling and shell metacharacters.
// Commands run argv-style (no shell), so metacharacters never reach an
// interpreter, but they are rejected outright anyway.
var shellDangerousPatterns = []string{
	"rm -rf", "sudo", "chmod 777", "chown", "passwd", "mkfs", "fdisk",
	"format", "-delete", "-exec", ";", "&&", "||", "|", "`", "$(",
	">", "<",
}

// ShellTool executes allow-listed commands with a timeout.
type ShellTool struct{}

func NewShellTool() *ShellTool {
	return &ShellTool{}
}

func (t *ShellTool) Name() string { return ToolShell }

func (t *ShellTool) Description() string {
	return "Execute shell commands safely on the system"
}

func (t *ShellTool) Schema() Schema {
	return Schema{
		"command": {
			Type:        "string",
			Description: "Shell command to execute safely",
			Required:    true,
		},
		"timeout": {
			Type:        "integer",
			Description: "Command timeout in seconds (default: 30)",
		},
		"working_dir": {
			Type:        "string",
			Description: "Working directory for command execution (optional)",
		},
	}
}

// IsCommandSafe reports whether a command passes the allow-list, deny-list
// and dangerous-substring checks. Unknown base commands fail closed.
func IsCommandSafe(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return false
	}
	base := fields[0]

	if _, denied := shellDeniedCommands[base]; denied {
		return false
	}
	if _, allowed := shellAllowedCommands[base]; !allowed {
		return false
	}

	lowered := strings.ToLower(command)
	for _, pattern := range shellDangerousPatterns {
		if strings.Contains(lowered, pattern) {
			log.Warn().Str("command", command).Str("pattern", pattern).Msg("dangerous command rejected")
			return false
		}
	}
	return true
}

func (t *ShellTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	command := StringParam(params, "command")
	if command == "" {
		return contractx.ToolResult{Success: false, Error: "command is required", ExitCode: -1}
	}

	if !IsCommandSafe(command) {
		return contractx.ToolResult{
			Success:  false,
			Error:    "Command not allowed for security reasons",
			ExitCode: -1,
		}
	}

	timeout := time.Duration(IntParam(params, "timeout", int(defaultShellTimeout/time.Second))) * time.Second
	if timeout <= 0 {
		timeout = defaultShellTimeout
	}
	if timeout > maxShellTimeout {
		timeout = maxShellTimeout
	}

	workingDir := StringParam(params, "working_dir")
	if workingDir != "" {
		if info, err := os.Stat(workingDir); err != nil || !info.IsDir() {
			workingDir = ""
		}
	}

	return runCommand(ctx, command, timeout, workingDir)
}

func runCommand(ctx context.Context, command string, timeout time.Duration, workingDir string) contractx.ToolResult {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fields := strings.Fields(command)
	cmd := exec.CommandContext(runCtx, fields[0], fields[1:]...)
	if workingDir != "" {
		cmd.Dir = workingDir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return contractx.ToolResult{
			Success:  false,
			Error:    fmt.Sprintf("Command timed out after %d seconds", int(timeout/time.Second)),
			ExitCode: -1,
		}
	}

	output := strings.TrimSpace(stdout.String())
	if errText := strings.TrimSpace(stderr.String()); errText != "" {
		output += "\n[STDERR]\n" + errText
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return contractx.ToolResult{
				Success:  false,
				Error:    err.Error(),
				Output:   output,
				ExitCode: -1,
			}
		}
	}

	return contractx.ToolResult{
		Success:  exitCode == 0,
		Output:   strings.TrimSpace(output),
		ExitCode: exitCode,
	}
}
