package app

// Command は turmas バイナリのサブコマンド。
type Command string

const (
	// CommandServe はHTTP APIを起動する。引数なしの既定値。
	CommandServe Command = "serve"
	// CommandWorker は参照整合性の修復ジョブを定期実行する。
	CommandWorker Command = "worker"
	// CommandMigrate はストアのスキーマを最新化する（MongoDBではインデックスの作成）。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のAPIの /health を叩く。シェルのないコンテナ向け。
	CommandHealthcheck Command = "healthcheck"
)

var commands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandWorker):      CommandWorker,
	string(CommandMigrate):     CommandMigrate,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand は先頭の引数をサブコマンドとして解釈する。
// 2番目以降の引数は無視し、未知の名前や引数なしはCommandServeとして扱う。
func ParseCommand(args []string) Command {
	if len(args) > 0 {
		if cmd, ok := commands[args[0]]; ok {
			return cmd
		}
	}
	return CommandServe
}
