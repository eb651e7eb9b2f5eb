package observability

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlecore/internal/events"
)

var loggedTopics = []events.Topic{
	events.TopicBattleStart,
	events.TopicBattleUpdate,
	events.TopicBattleEnd,
	events.TopicBattleLog,
	events.TopicPlayerStats,
	events.TopicAbilityCommit,
}

// LogEvents subscribes to every battle topic on bus and writes one structured
// line per event: Info for start, end and log, Debug for the rest.
//
// Postcondition: the returned func removes every subscription.
func LogEvents(bus *events.Bus, logger *zap.Logger) func() {
	unsubs := make([]func(), 0, len(loggedTopics))
	for _, topic := range loggedTopics {
		unsubs = append(unsubs, bus.Subscribe(topic, func(e events.Event) { logEvent(logger, e) }))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func logEvent(logger *zap.Logger, e events.Event) {
	fields := []zap.Field{zap.String("topic", string(e.Topic)), zap.String("battle", e.BattleID)}
	switch p := e.Payload.(type) {
	case events.BattleStart:
		logger.Info("battle started", append(fields,
			zap.String("player", p.PlayerID),
			zap.Int("enemies", len(p.Enemies)),
		)...)
	case events.BattleEnd:
		logger.Info("battle ended", append(fields,
			zap.String("outcome", string(p.Outcome)),
			zap.Int("rounds", p.Rounds),
			zap.Int("experience", p.Experience),
			zap.Int("gold", p.Gold),
		)...)
	case events.BattleLog:
		for _, l := range p.Lines {
			logger.Info(l.Message, append(fields,
				zap.Int("round", p.Round),
				zap.Bool("auto", p.Auto),
				zap.String("type", l.Type),
			)...)
		}
	case events.BattleUpdate:
		logger.Debug("battle updated", append(fields,
			zap.Int("round", p.Round),
			zap.Int("player_health", p.Player.Health),
		)...)
	case events.PlayerStats:
		logger.Debug("player stats", append(fields,
			zap.String("player", p.PlayerID),
			zap.Float64("health", p.Health),
			zap.Int("experience", p.Experience),
			zap.Int("gold", p.Gold),
		)...)
	case events.AbilityCommit:
		logger.Debug("ability committed", append(fields,
			zap.String("owner", p.OwnerID),
			zap.String("ability", p.AbilityID),
			zap.Int("cooldown", p.Cooldown),
		)...)
	default:
		logger.Debug("event", fields...)
	}
}
