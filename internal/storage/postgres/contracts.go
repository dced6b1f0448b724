package postgres

import (
	"github.com/cory-johannsen/dominion/internal/game/action"
	"github.com/cory-johannsen/dominion/internal/game/battle"
	"github.com/cory-johannsen/dominion/internal/game/npc"
	"github.com/cory-johannsen/dominion/internal/game/turn"
	"github.com/cory-johannsen/dominion/internal/game/war"
	"github.com/cory-johannsen/dominion/internal/notify"
)

var (
	_ battle.Store  = (*Store)(nil)
	_ action.Store  = (*Store)(nil)
	_ turn.Store    = (*Store)(nil)
	_ npc.Directory = (*Store)(nil)
	_ war.Store     = (*Store)(nil)
	_ notify.Sink   = (*Store)(nil)
)
