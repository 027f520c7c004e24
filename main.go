// GulfStream
package main

import (
	"fmt"
	"os"

	"github.com/akamensky/argparse"
	"github.com/hhkbp2/go-logging"
	"github.com/udawtr/gulfstream-go/gulfstream"
)

func main() {
	// コマンドライン引数の処理
	parser := argparse.NewParser("gulfstream", "Visualizes Gulf Stream sea-surface height, temperature and currents")

	config := parser.String("c", "config", &argparse.Options{
		Default: "",
		Help:    "設定ファイル (YAML)。省略時は既定の設定"})

	input := parser.String("i", "input", &argparse.Options{
		Default: "",
		Help:    "入力ファイルパス (設定の値を上書き)"})

	filename := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "保存ファイルパス (設定の値を上書き)"})

	dumpConfig := parser.String("", "dump_config", &argparse.Options{
		Default: "",
		Help:    "実際に使う設定を YAML で書き出すファイルパス"})

	log := parser.Selector("", "log", []string{"DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}, &argparse.Options{
		Default: "INFO",
		Help:    "ログレベルの指定 DEBUG, INFO(デフォルト), WARN, ERROR, CRITICAL"})

	ssh3d := parser.NewCommand("ssh3d", "海面高度の3次元スナップショット (PNG)")
	sshVideo := parser.NewCommand("ssh-video", "海面高度の動画 (GIF/MP4)")
	sst := parser.NewCommand("sst", "海面水温のスナップショット (PNG)")
	uvSnapshots := parser.NewCommand("uv-snapshots", "流速の4面図 (PNG)")
	uvVideo := parser.NewCommand("uv-video", "流速の動画 (GIF/MP4)")
	export := parser.NewCommand("export", "断面を CSV に出力")
	exportTime := export.Int("t", "time", &argparse.Options{
		Default: -1,
		Help:    "出力する時刻 (省略時は設定の値)"})
	synth := parser.NewCommand("synth", "合成データ一式を作成")
	synthTimes := synth.Int("n", "times", &argparse.Options{
		Default: 0,
		Help:    "コマ数 (省略時は設定の値)"})
	synthDir := synth.String("d", "dir", &argparse.Options{
		Default: "",
		Help:    "出力先ディレクトリ (省略時は設定の値)"})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	// ログレベル
	gulfstream.SetLogLevel(*log)
	logger := logging.GetLogger("gulfstream")

	cfg, err := gulfstream.LoadConfig(*config)
	if err != nil {
		logger.Errorf("設定の読み込みに失敗しました: %v", err)
		os.Exit(1)
	}

	if *input != "" {
		cfg.SetInput(*input)
	}
	if *synthDir != "" {
		cfg.Synth.Dir = *synthDir
	}
	if *exportTime >= 0 {
		cfg.Export.Time = *exportTime
	}
	if *synthTimes > 0 {
		cfg.Synth.Times = *synthTimes
	}

	if *dumpConfig != "" {
		if err := cfg.WriteYAML(*dumpConfig); err != nil {
			logger.Errorf("設定の書き出しに失敗しました: %v", err)
			os.Exit(1)
		}
	}

	switch {
	case ssh3d.Happened():
		err = gulfstream.RunSSH3D(cfg.SSH3D, *filename)
	case sshVideo.Happened():
		err = gulfstream.RunSSHVideo(cfg.SSHVideo, *filename)
	case sst.Happened():
		err = gulfstream.RunSST(cfg.SST, *filename)
	case uvSnapshots.Happened():
		err = gulfstream.RunUVSnapshots(cfg.UVSnapshots, *filename)
	case uvVideo.Happened():
		err = gulfstream.RunUVVideo(cfg.UVVideo, *filename)
	case export.Happened():
		err = gulfstream.RunExport(cfg.Export, *filename)
	case synth.Happened():
		err = gulfstream.Synthesize(cfg.Synth)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}

	logger.Infof("処理が終了しました")
}
