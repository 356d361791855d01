// Package admin holds the operator commands.
package admin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"community-bot/bot"
	"community-bot/commands/defs"
	"community-bot/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Register wires /status.
func Register(b *bot.Bot) {
	b.Dispatcher.Command(defs.Status.Name, func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if !utils.HasPermission(utils.InteractionRoles(i), b.Config(), utils.AdminPermission) {
			utils.SendErrorResponse(s, i, "You do not have permission to use this command.")
			return
		}
		utils.SendEmbedResponse(s, i, true, statusEmbed(b))
	})
}

func statusEmbed(b *bot.Bot) *discordgo.MessageEmbed {
	s := b.Session

	// Host metrics are best effort, a sandboxed host may hide some of them.
	cpuCount, _ := cpu.Counts(true)
	cpuUsage := "n/a"
	if percent, err := cpu.Percent(0, false); err == nil && len(percent) > 0 {
		cpuUsage = fmt.Sprintf("%.1f%%", percent[0])
	}
	memory := "n/a"
	if vm, err := mem.VirtualMemory(); err == nil {
		memory = fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024)
	}
	osVersion := runtime.GOOS
	if info, err := host.Info(); err == nil {
		osVersion = fmt.Sprintf("%s %s", info.Platform, info.PlatformVersion)
	}

	guilds := 0
	if s.State != nil {
		guilds = len(s.State.Guilds)
	}

	snap := b.Throttle.Snapshot()
	rateLimit := fmt.Sprintf("%d calls · %d throttled · %d retries · %d failed\navg %s · %d buckets (%d locked)",
		snap.Calls, snap.Throttled, snap.Retries, snap.Failed,
		snap.AvgLatency.Round(time.Millisecond), snap.Buckets, snap.LockedBuckets)
	if !snap.GlobalUntil.IsZero() {
		rateLimit += "\nglobal lock until " + utils.Timestamp(snap.GlobalUntil, "T")
	}

	return &discordgo.MessageEmbed{
		Title: "System status",
		Color: utils.ColorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: osVersion, Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU usage", Value: cpuUsage, Inline: true},
			{Name: "🧠 Memory", Value: memory, Inline: true},
			{Name: "🗃️ Databases", Value: fmt.Sprintf("%d KB", dataSize(b.Config().DataDir)/1024), Inline: true},
			{Name: "⏱️ Gateway latency", Value: s.HeartbeatLatency().Round(time.Millisecond).String(), Inline: true},
			{Name: "⌛ Uptime", Value: b.Uptime().Round(time.Second).String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 Cached guilds", Value: fmt.Sprintf("%d", guilds), Inline: true},
			{Name: "⏲️ Sweeps", Value: fmt.Sprintf("%d", len(b.Scheduler.Jobs())), Inline: true},
			{Name: "🚦 Rate limit", Value: rateLimit},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Status at " + time.Now().Format("15:04"),
		},
	}
}

// dataSize sums the sqlite files in dir.
func dataSize(dir string) int64 {
	if dir == "" {
		return 0
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		return 0
	}
	var total int64
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			total += info.Size()
		}
	}
	return total
}
