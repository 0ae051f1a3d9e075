package handler

import (
	"github.com/CALEBPOTZ/battleroyal/internal/app/room"
	"github.com/CALEBPOTZ/battleroyal/internal/configs"
)

type AppDeps struct {
	Room   *room.Room
	Config *configs.AppConfig
}
