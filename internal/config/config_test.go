package config

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080, Mode: "release"},
		Bot:    BotConfig{Prefix: "!", HistoryWindow: 20, ReplyLimit: 2000},
	}
}

func TestConfig_Validate(t *testing.T) {
	Convey("Config.Validate 校验配置", t, func() {
		Convey("合法配置通过", func() {
			So(validConfig().Validate(), ShouldBeNil)
		})

		Convey("端口越界", func() {
			cfg := validConfig()
			cfg.Server.Port = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg.Server.Port = 70000
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("非法运行模式", func() {
			cfg := validConfig()
			cfg.Server.Mode = "production"
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("空指令前缀", func() {
			cfg := validConfig()
			cfg.Bot.Prefix = ""
			So(cfg.Validate(), ShouldNotBeNil)
		})

		Convey("窗口与回复上限必须为正", func() {
			cfg := validConfig()
			cfg.Bot.HistoryWindow = 0
			So(cfg.Validate(), ShouldNotBeNil)

			cfg = validConfig()
			cfg.Bot.ReplyLimit = -1
			So(cfg.Validate(), ShouldNotBeNil)
		})
	})
}

func TestBotConfig_IsAdmin(t *testing.T) {
	Convey("BotConfig.IsAdmin 白名单判定", t, func() {
		cfg := &BotConfig{AdminIDs: []string{"admin-1", "admin-2"}}
		So(cfg.IsAdmin("admin-1"), ShouldBeTrue)
		So(cfg.IsAdmin("u1"), ShouldBeFalse)

		Convey("空白名单全部拒绝", func() {
			empty := &BotConfig{}
			So(empty.IsAdmin("anyone"), ShouldBeFalse)
		})
	})
}
