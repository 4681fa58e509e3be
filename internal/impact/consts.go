package impact

const (
	// Version denotes the current application version (following semantic
	// versioning)
	Version string = "0.6.0"

	// StateRoundStart denotes the state at the very start of the round,
	// before any event has been recorded
	StateRoundStart string = "round_start"

	// ActionDamage represents a player damaging another player
	ActionDamage string = "damage"

	// ActionTradeDamage represents a hurt player's attacker being damaged
	ActionTradeDamage string = "tradeDamage"

	// ActionFlashAssist represents a player flashing another player getting
	// damaged
	ActionFlashAssist string = "flashAssist"

	// ActionHurt represents a player being damaged
	ActionHurt string = "hurt"

	// ActionDefuse represents a defender being alive when the spike gets
	// defused
	ActionDefuse string = "defuse"

	// ActionDefusedOn represents an attacker being alive when the spike gets
	// defused
	ActionDefusedOn string = "defusedOn"

	// ActionAlive represents a player being alive when the outcome
	// prediction changes for any other reason
	ActionAlive string = "alive"

	// flashWindow is how long after a flash the flashed player counts as
	// blinded, in milliseconds
	flashWindow int64 = 2000
)
