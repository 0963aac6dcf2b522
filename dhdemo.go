package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	alphaFlag = &cli.Uint64Flag{
		Name:    "alpha",
		Aliases: []string{"a"},
		Usage:   "primitive root `α`, default from config",
	}
	primeFlag = &cli.Uint64Flag{
		Name:    "prime",
		Aliases: []string{"q"},
		Usage:   "prime modulus `q`, default from config",
	}
	transportFlag = &cli.StringFlag{
		Name:    "transport",
		Aliases: []string{"t"},
		Usage:   "tcp://host:port or kcp://host:port/mode, default from config",
	}
	privateFlag = &cli.Uint64Flag{
		Name:    "private",
		Aliases: []string{"x"},
		Usage:   "private key, 0 for random",
	}
)

func keyFlag(name, usage string) cli.Flag {
	return &cli.Uint64Flag{Name: name, Usage: usage}
}

func main() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "show version",
	}
	app := &cli.App{
		Name:    app_name,
		Usage:   "Diffie-Hellman key exchange step by step",
		Version: versionNumber(),
		Before:  context.initialize,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "indicate config if in nontypical path",
				Destination: &context.configFile,
			},
			&cli.IntFlag{
				Name:        "v",
				Value:       -1,
				Usage:       "verbose log level",
				Destination: &context.vFlag,
			},
			&cli.StringFlag{
				Name:        "logdir",
				Usage:       "if non-empty will write log into the directory",
				Destination: &context.logdir,
			},
			&cli.BoolFlag{
				Name:        "debug",
				Usage:       "debug mode",
				Hidden:      true,
				Destination: &context.debug,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "table",
				Usage:  "list α^i mod q and check whether α is a primitive root",
				Flags:  []cli.Flag{alphaFlag, primeFlag},
				Action: context.tableCommandHandler,
			},
			{
				Name:   "pubkey",
				Usage:  "compute public keys YA, YB",
				Flags:  []cli.Flag{alphaFlag, primeFlag, keyFlag("xa", "Alice's private key"), keyFlag("xb", "Bob's private key")},
				Action: context.pubkeyCommandHandler,
			},
			{
				Name:      "secret",
				Usage:     "compute the shared secret K from either side",
				ArgsUsage: "--xa XA --yb YB | --xb XB --ya YA",
				Flags: []cli.Flag{alphaFlag, primeFlag,
					keyFlag("xa", "Alice's private key"), keyFlag("yb", "Bob's public key"),
					keyFlag("xb", "Bob's private key"), keyFlag("ya", "Alice's public key")},
				Action: context.secretCommandHandler,
			},
			{
				Name:  "crack",
				Usage: "recover a private key from a public key by brute force",
				Flags: []cli.Flag{alphaFlag, primeFlag, keyFlag("y", "public key"),
					&cli.StringFlag{Name: "party", Value: "alice", Usage: "alice or bob"}},
				Action: context.crackCommandHandler,
			},
			{
				Name:   "walk",
				Usage:  "run the whole exchange and the eavesdropper",
				Flags:  []cli.Flag{alphaFlag, primeFlag, keyFlag("xa", "Alice's private key"), keyFlag("xb", "Bob's private key")},
				Action: context.walkCommandHandler,
			},
			{
				Name:   "eavesdrop",
				Usage:  "random parties against a brute-force listener",
				Flags:  []cli.Flag{alphaFlag, primeFlag},
				Action: context.eavesdropCommandHandler,
			},
			{
				Name:   "listen",
				Usage:  "act as Alice and answer exchanges on the transport",
				Flags:  []cli.Flag{alphaFlag, primeFlag, transportFlag, privateFlag},
				Action: context.listenCommandHandler,
			},
			{
				Name:   "connect",
				Usage:  "act as Bob and run one exchange with a listener",
				Flags:  []cli.Flag{alphaFlag, primeFlag, transportFlag, privateFlag},
				Action: context.connectCommandHandler,
			},
			{
				Name:   "algorithm",
				Usage:  "show the algorithm",
				Action: context.algorithmCommandHandler,
			},
			{
				Name:  "init-config",
				Usage: "create a config template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file, default stdout"},
				},
				Action: context.initConfigCommandHandler,
			},
		},
	}
	cli.AppHelpTemplate += fmt.Sprintf("\n%s\n%s\n", project_url, buildString())

	if err := app.Run(os.Args); err != nil {
		fatalError(err)
	}
}
