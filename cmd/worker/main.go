package main

import (
	"github.com/mettware/slack-notifier/internal/app"
	"github.com/mettware/slack-notifier/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
