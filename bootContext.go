package main

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Lafeng/dhdemo/crypto"
	ex "github.com/Lafeng/dhdemo/exception"
	log "github.com/Lafeng/dhdemo/glog"
	"github.com/Lafeng/dhdemo/modp"
	"github.com/Lafeng/dhdemo/session"
	. "github.com/Lafeng/dhdemo/tunnel"
	"github.com/urfave/cli/v2"
)

var (
	context = &bootContext{}
	sigChan = make(chan os.Signal, 1)
)

type Component interface {
	Stats() string
	Close()
}

type bootContext struct {
	configFile string
	logdir     string
	debug      bool
	vSpecified bool
	vFlag      int
	cc         *ConfigContext
	cache      *session.TableCache
	components []Component
	closeable  []io.Closer
}

// global before handler
func (ctx *bootContext) initialize(c *cli.Context) (err error) {
	// inject parameters into package.exception
	ex.DEBUG = ctx.debug
	// glog
	ctx.vSpecified = c.IsSet("v")
	log.SetLogOutput(ctx.logdir)
	log.SetLogVerbose(ctx.vFlag)
	return nil
}

func (ctx *bootContext) initConfig() *ConfigContext {
	if ctx.cc != nil {
		return ctx.cc
	}
	var err error
	// load config file
	ctx.cc, err = DetectConfig(ctx.configFile)
	if errors.Is(err, CONF_NOT_FOUND) && ctx.configFile == NULL {
		if log.V(log.LV_CONFIG) {
			log.Infoln(err, "use built-in defaults")
		}
		ctx.cc, err = DefaultConfig(), nil
	}
	fatalError(err)
	if !ctx.vSpecified { // no -v
		// set logV with config.v
		if v := ctx.cc.LogV(); v > 0 {
			log.SetLogVerbose(v)
		}
	}
	if log.V(log.LV_CONFIG) && ctx.cc.File() != NULL {
		log.Infoln("Load config from", ctx.cc.File())
	}
	ctx.cache = session.NewTableCache(ctx.cc.Group().CacheSize)
	return ctx.cc
}

// alpha and q from the command line, falling back to [dhdemo.Group]
func (ctx *bootContext) groupArgs(c *cli.Context) (alpha, q uint64) {
	var g = ctx.initConfig().Group()
	alpha, q = g.Alpha, g.Prime
	if c.IsSet("alpha") {
		alpha = c.Uint64("alpha")
	}
	if c.IsSet("prime") {
		q = c.Uint64("prime")
	}
	return
}

func (ctx *bootContext) newSession(c *cli.Context) *session.Session {
	alpha, q := ctx.groupArgs(c)
	s := session.New(session.Options{
		MaxModulus: ctx.cc.Group().MaxModulus,
		Cache:      ctx.cache,
	})
	s.SetParams(alpha, q)
	return s
}

// newCheckedSession requires alpha to be a primitive root of q
func (ctx *bootContext) newCheckedSession(c *cli.Context) *session.Session {
	s := ctx.newSession(c)
	_, verdict, err := s.CheckPrimitiveRoot()
	fatalError(err)
	if !verdict {
		st := s.Snapshot()
		fatalError(session.ErrNotPrimitiveRoot, fmt.Sprintf(" (α=%d q=%d)", st.Alpha, st.Prime))
	}
	return s
}

// ./dhdemo table [-a ALPHA] [-q PRIME]
func (ctx *bootContext) tableCommandHandler(c *cli.Context) error {
	s := ctx.newSession(c)
	table, _, err := s.CheckPrimitiveRoot()
	fatalError(err)
	st := s.Snapshot()
	for _, e := range table {
		fmt.Printf("%d^%-6d mod %d = %d\n", st.Alpha, e.Exponent, st.Prime, e.Result)
	}
	fmt.Println()
	printSteps(s.Steps())
	if log.V(log.LV_CACHE) {
		log.Infoln(ctx.cache.Stats())
	}
	return nil
}

// ./dhdemo pubkey --xa XA --xb XB
func (ctx *bootContext) pubkeyCommandHandler(c *cli.Context) error {
	s := ctx.newCheckedSession(c)
	s.SetPrivateKeys(c.Uint64("xa"), c.Uint64("xb"))
	ya, yb, err := s.CalculatePublicKeys()
	fatalError(err)
	fmt.Printf("YA = %d\nYB = %d\n\n", ya, yb)
	printSteps(s.Steps())
	return nil
}

// ./dhdemo secret --xa XA --yb YB | --xb XB --ya YA
func (ctx *bootContext) secretCommandHandler(c *cli.Context) error {
	if !(c.IsSet("xa") && c.IsSet("yb")) && !(c.IsSet("xb") && c.IsSet("ya")) {
		fatalAndCommandHelp(c)
	}
	s := ctx.newCheckedSession(c)
	s.SetPrivateKeys(c.Uint64("xa"), c.Uint64("xb"))
	s.SetPublicKeys(c.Uint64("ya"), c.Uint64("yb"))
	k, err := s.CalculateSecretKey()
	fatalError(err)
	fmt.Printf("K = %d\n\n", k)
	printSteps(s.Steps())
	return nil
}

// ./dhdemo crack -y Y [--party bob]
func (ctx *bootContext) crackCommandHandler(c *cli.Context) error {
	if !c.IsSet("y") {
		fatalAndCommandHelp(c)
	}
	var party session.Party
	switch strings.ToLower(c.String("party")) {
	case "alice", "a":
		party = session.Alice
	case "bob", "b":
		party = session.Bob
	default:
		fatalAndCommandHelp(c)
	}
	s := ctx.newCheckedSession(c)
	y := c.Uint64("y")
	if party == session.Alice {
		s.SetPublicKeys(y, 0)
	} else {
		s.SetPublicKeys(0, y)
	}
	x, err := s.RecoverPrivateKey(party)
	if err != nil {
		printSteps(s.Steps())
		fatalError(err)
	}
	fmt.Printf("X%s = %d\n\n", party.String()[:1], x)
	printSteps(s.Steps())
	return nil
}

// ./dhdemo walk --xa XA --xb XB
func (ctx *bootContext) walkCommandHandler(c *cli.Context) error {
	s := ctx.newCheckedSession(c)
	printSteps(s.Steps())

	s.SetPrivateKeys(c.Uint64("xa"), c.Uint64("xb"))
	ya, yb, err := s.CalculatePublicKeys()
	fatalError(err)
	printSteps(s.Steps())

	k, err := s.CalculateSecretKey()
	fatalError(err)
	printSteps(s.Steps())

	// Eve only sees alpha, q, YA and YB
	st := s.Snapshot()
	eve := session.New(session.Options{MaxModulus: ctx.cc.Group().MaxModulus, Cache: ctx.cache})
	eve.SetParams(st.Alpha, st.Prime)
	_, _, err = eve.CheckPrimitiveRoot()
	fatalError(err)
	eve.SetPublicKeys(ya, yb)
	xa, err := eve.RecoverPrivateKey(session.Alice)
	fatalError(err)
	printSteps(eve.Steps())

	stolen, err := modp.SharedSecret(yb, xa, st.Prime)
	fatalError(err)
	fmt.Printf("Eavesdropper: K = YB^XA mod q = %d^%d mod %d = %d (shared secret K = %d)\n",
		yb, xa, st.Prime, stolen, k)
	return nil
}

// ./dhdemo eavesdrop [-a ALPHA] [-q PRIME]
func (ctx *bootContext) eavesdropCommandHandler(c *cli.Context) error {
	st := ctx.newCheckedSession(c).Snapshot()
	i, err := crypto.Eavesdrop(st.Alpha, st.Prime, nil)
	fatalError(err)
	fmt.Printf("α = %d, q = %d\n", i.Alpha, i.Prime)
	fmt.Printf("YA = %d, YB = %d, K = %d\n", i.PublicA, i.PublicB, i.Secret)
	fmt.Printf("Recovered XA' = %d, stolen K = %d\n", i.RecoveredA, i.Stolen)
	if i.Broken() {
		fmt.Println("The eavesdropper holds the shared secret.")
	} else {
		fmt.Println("The eavesdropper failed.")
	}
	return nil
}

func (ctx *bootContext) newParty(c *cli.Context) (*Party, *Transport) {
	alpha, q := ctx.groupArgs(c)
	var (
		exch = ctx.cc.Exchange()
		tr   = exch.GetTransport()
		priv = exch.PrivateKey
		err  error
	)
	if max := ctx.cc.Group().MaxModulus; q > max {
		fatalError(session.ErrModulusTooLarge.Apply(max))
	}
	if c.IsSet("transport") {
		tr, err = ParseTransport(c.String("transport"))
		fatalError(err)
	}
	if c.IsSet("private") {
		priv = c.Uint64("private")
	}
	party, err := NewParty(alpha, q, priv, exch.GetTimeout())
	fatalError(err)
	return party, tr
}

// ./dhdemo listen [-t TRANSPORT] [-x PRIVATE]
func (ctx *bootContext) listenCommandHandler(c *cli.Context) error {
	if c.NArg() > 0 {
		fatalAndCommandHelp(c)
	}
	party, tr := ctx.newParty(c)
	go ctx.startServer(party, tr)
	waitSignal()
	return nil
}

func (ctx *bootContext) startServer(party *Party, tr *Transport) {
	defer func() {
		sigChan <- Bye
	}()
	var (
		ln  net.Listener
		err error
	)

	server := NewServer(party)
	server.OnResult = func(res *Result, addr net.Addr) {
		fmt.Printf("%s: YA = %d, YB = %d, fingerprint %016x\n", addr, res.Public, res.PeerPublic, res.Fingerprint)
	}

	ln, err = tr.Listen()
	fatalError(err)
	defer ln.Close()

	ctx.register(server, ln)
	log.Infoln(versionString())
	log.Infof("Alice is listening on %s α=%d q=%d", tr, party.Alpha, party.Prime)

	server.Serve(ln)
}

// ./dhdemo connect [-t TRANSPORT] [-x PRIVATE]
func (ctx *bootContext) connectCommandHandler(c *cli.Context) error {
	if c.NArg() > 0 {
		fatalAndCommandHelp(c)
	}
	party, tr := ctx.newParty(c)
	client := NewClient(party, tr)
	ctx.register(client, nil)

	res, err := client.Exchange()
	fatalError(err)
	fmt.Printf("XB = %d\nYB = %d\nYA = %d\nK  = %d\nfingerprint %016x\n",
		res.Private, res.Public, res.PeerPublic, res.Secret, res.Fingerprint)
	ctx.doClose()
	return nil
}

func (ctx *bootContext) algorithmCommandHandler(c *cli.Context) error {
	fmt.Println(session.AlgorithmText())
	return nil
}

// ./dhdemo init-config [-o file]
func (ctx *bootContext) initConfigCommandHandler(c *cli.Context) error {
	output := getOutputArg(c)
	err := CreateConfigTemplate(output)
	fatalError(err)
	if output != NULL {
		fmt.Fprintln(os.Stderr, "Config template written to", output)
	}
	return nil
}

func (ctx *bootContext) register(cmp Component, cz io.Closer) {
	ctx.components = append(ctx.components, cmp)
	if cz != nil {
		ctx.closeable = append(ctx.closeable, cz)
	}
}

func (ctx *bootContext) doStats() {
	if ctx.components != nil {
		for _, t := range ctx.components {
			fmt.Fprintln(os.Stderr, t.Stats())
		}
	}
	if ctx.cache != nil {
		fmt.Fprintln(os.Stderr, ctx.cache.Stats())
	}
}

func (ctx *bootContext) doClose() {
	for _, t := range ctx.closeable {
		t.Close()
	}
	for _, t := range ctx.components {
		t.Close()
	}
	ctx.closeable, ctx.components = nil, nil
	log.Flush()
}

func printSteps(steps []string) {
	for _, s := range steps {
		fmt.Println(s)
		fmt.Println()
	}
}

func getOutputArg(c *cli.Context) string {
	output := c.String("output")
	if output != NULL && !strings.Contains(output, ".") {
		output += ".ini"
	}
	return output
}

func waitSignal() {
	USR2 := syscall.Signal(12) // fake signal-USR2 for windows
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, USR2)
	for sig := range sigChan {
		switch sig {
		case Bye:
			log.Exitln("Exiting.")
			context.doClose()
			return
		case syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM:
			log.Exitln("Terminated by", sig)
			context.doClose()
			return
		case USR2:
			context.doStats()
		default:
			log.Infoln("Ingore signal", sig)
		}
	}
}

func fatalError(err error, args ...interface{}) {
	if err != nil {
		msg := err.Error()
		if len(args) > 0 {
			msg += fmt.Sprint(args...)
		}
		fmt.Fprintln(os.Stderr, msg)
		context.doClose()
		os.Exit(1)
	}
}

func fatalAndCommandHelp(c *cli.Context) {
	// app root
	if c.Command == nil || c.Command.Name == NULL {
		cli.HelpPrinter(os.Stderr, cli.AppHelpTemplate, c.App)
	} else { // command
		cli.HelpPrinter(os.Stderr, cli.CommandHelpTemplate, c.Command)
	}
	context.doClose()
	os.Exit(1)
}
