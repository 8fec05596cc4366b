package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Runner executes an external command.
type Runner func(ctx context.Context, name string, args ...string) error

// Desktop shows a native desktop notification.
type Desktop struct {
	goos string
	run  Runner
}

// NewDesktop creates a notifier for the current platform.
func NewDesktop() *Desktop {
	return &Desktop{goos: runtime.GOOS, run: runCommand}
}

// Name returns the notifier name
func (d *Desktop) Name() string {
	return "desktop"
}

// Notify shows msg using osascript, notify-send or a PowerShell toast.
func (d *Desktop) Notify(ctx context.Context, msg Message) error {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, appleScriptEscape(msg.Body), appleScriptEscape(msg.Title))
		return d.run(ctx, "osascript", "-e", script)

	case "linux":
		urgency := msg.Urgency
		if urgency == "" {
			urgency = UrgencyNormal
		}
		return d.run(ctx, "notify-send", "-u", urgency, msg.Title, msg.Body)

	case "windows":
		script := fmt.Sprintf(`
			[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
			[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null

			$template = @"
			<toast>
				<visual>
					<binding template="ToastText02">
						<text id="1">%s</text>
						<text id="2">%s</text>
					</binding>
				</visual>
			</toast>
"@

			$xml = New-Object Windows.Data.Xml.Dom.XmlDocument
			$xml.LoadXml($template)
			$toast = [Windows.UI.Notifications.ToastNotification]::new($xml)
			[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("Claude Code").Show($toast)
		`, xmlEscape(msg.Title), xmlEscape(msg.Body))
		return d.run(ctx, "powershell", "-NoProfile", "-Command", script)

	default:
		return fmt.Errorf("unsupported platform: %s", d.goos)
	}
}

func appleScriptEscape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}

var xmlReplacer = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")

func xmlEscape(s string) string {
	return xmlReplacer.Replace(s)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}
