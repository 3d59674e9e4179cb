package discord

import (
	"github.com/foxseedlab/callinterview/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*SummaryPoster, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewSummaryPoster(c.DiscordToken, c.DiscordChannelID), nil
	})
}
