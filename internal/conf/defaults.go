// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "WildTag")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "logs/wildtag.log")
	viper.SetDefault("main.log.maxsize", 104857600)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.debug", false)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "wildtag.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "wildtag")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "wildtag")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", "3306")

	viper.SetDefault("storage.path", "images/")
	viper.SetDefault("storage.chunksize", 1024)
}
