package tunnel

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/Lafeng/dhdemo/exception"
	"github.com/Lafeng/dhdemo/modp"
	"github.com/go-ini/ini"
	"github.com/kardianos/osext"
)

const (
	CF_GROUP    = "dhdemo.Group"
	CF_EXCHANGE = "dhdemo.Exchange"

	CONFIG_NAME = "dhdemo.ini"
)

var (
	CONF_NOT_FOUND = exception.New("Config not found")
	CONF_MISS      = exception.New("Missed field in config:")
	CONF_ERROR     = exception.New("Error field in config:")
)

// [dhdemo.Group]
type GroupConf struct {
	Alpha      uint64 `importable:"2"`
	Prime      uint64 `importable:"11"`
	MaxModulus uint64 `importable:"65537"`
	CacheSize  int    `importable:"16"`
	Verbose    int    `importable:"1"`
}

func (g *GroupConf) validate() error {
	if g.Alpha == 0 {
		return CONF_MISS.Apply("Alpha")
	}
	if g.Prime <= 1 {
		return CONF_ERROR.Apply("Prime")
	}
	if g.MaxModulus == 0 {
		return CONF_MISS.Apply("MaxModulus")
	}
	if g.Prime > g.MaxModulus {
		return CONF_ERROR.Apply("Prime exceeds MaxModulus")
	}
	if !modp.IsProbablePrime(g.Prime) {
		return CONF_ERROR.Apply("Prime is composite")
	}
	if g.CacheSize < 0 {
		return CONF_ERROR.Apply("CacheSize")
	}
	return nil
}

// [dhdemo.Exchange]
type ExchangeConf struct {
	Transport  string `importable:"tcp://127.0.0.1:9011"`
	PrivateKey uint64 `importable:"0"` // 0 draws a random key per exchange
	Timeout    int    `importable:"10"`
	transport  *Transport
}

func (e *ExchangeConf) validate() (err error) {
	if e.Transport == NULL {
		return CONF_MISS.Apply("Transport")
	}
	if e.transport, err = ParseTransport(e.Transport); err != nil {
		return err
	}
	if e.Timeout <= 0 {
		return CONF_ERROR.Apply("Timeout")
	}
	return nil
}

func (e *ExchangeConf) GetTransport() *Transport {
	return e.transport
}

func (e *ExchangeConf) GetTimeout() time.Duration {
	return time.Duration(e.Timeout) * time.Second
}

type ConfigContext struct {
	filepath    string
	iniInstance *ini.File
	group       *GroupConf
	exchange    *ExchangeConf
}

// DefaultConfig is used when no config file is present.
func DefaultConfig() *ConfigContext {
	var cc = &ConfigContext{
		group:    new(GroupConf),
		exchange: new(ExchangeConf),
	}
	setFieldsDefaultValue(cc.group)
	setFieldsDefaultValue(cc.exchange)
	if err := cc.exchange.validate(); err != nil {
		panic(err)
	}
	return cc
}

func configPaths(specifiedFile string) []string {
	if specifiedFile != NULL {
		return []string{specifiedFile}
	}
	paths := []string{CONFIG_NAME} // cwd
	// same path with exe
	if ef, err := osext.ExecutableFolder(); err == nil {
		paths = append(paths, filepath.Join(ef, CONFIG_NAME))
	}
	// home
	var home string
	if u, err := user.Current(); err == nil {
		home = u.HomeDir
	} else {
		home = os.Getenv("HOME")
	}
	if home != NULL {
		paths = append(paths, filepath.Join(home, CONFIG_NAME))
	}
	// etc
	if runtime.GOOS != "windows" {
		paths = append(paths, "/etc/dhdemo/"+CONFIG_NAME)
	}
	return paths
}

// DetectConfig loads the first config found. CONF_NOT_FOUND is returned
// when none of the typical paths holds one.
func DetectConfig(specifiedFile string) (*ConfigContext, error) {
	var paths = configPaths(specifiedFile)
	var file *string
	for _, f := range paths {
		if f != NULL && !IsNotExist(f) {
			file = &f
			break
		}
	}
	if file == nil {
		msg := fmt.Sprintf("`%s` in [ %s ]", CONFIG_NAME, strings.Join(paths, "; "))
		return nil, CONF_NOT_FOUND.Apply(msg)
	}

	iniInstance, err := ini.Load(*file)
	if err != nil {
		return nil, exception.Spawn(&err, "Failed to load %s", *file)
	}
	var cc = &ConfigContext{
		filepath:    *file,
		iniInstance: iniInstance,
	}
	return cc, cc.initialize()
}

func (cc *ConfigContext) initialize() (err error) {
	defer func() {
		cc.iniInstance = nil
	}()
	cc.group = new(GroupConf)
	cc.exchange = new(ExchangeConf)
	setFieldsDefaultValue(cc.group)
	setFieldsDefaultValue(cc.exchange)

	sec, err := cc.iniInstance.GetSection(CF_GROUP)
	if err != nil {
		return CONF_MISS.Apply(CF_GROUP)
	}
	if err = sec.MapTo(cc.group); err != nil {
		return
	}
	if err = cc.group.validate(); err != nil {
		return
	}

	// exchange section is optional
	if sec, err = cc.iniInstance.GetSection(CF_EXCHANGE); err == nil {
		if err = sec.MapTo(cc.exchange); err != nil {
			return
		}
	}
	return cc.exchange.validate()
}

func (cc *ConfigContext) Group() *GroupConf {
	return cc.group
}

func (cc *ConfigContext) Exchange() *ExchangeConf {
	return cc.exchange
}

func (cc *ConfigContext) File() string {
	return cc.filepath
}

func (cc *ConfigContext) LogV() int {
	return cc.group.Verbose
}

// CreateConfigTemplate writes a config with default values to file, or to
// stdout if file is empty.
func CreateConfigTemplate(file string) (err error) {
	var f *os.File
	if file == NULL {
		f = os.Stdout
	} else {
		f, err = os.OpenFile(file, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0644)
		if err != nil {
			return
		}
		defer f.Close()
	}
	defer f.Sync()

	var (
		group    = new(GroupConf)
		exchange = new(ExchangeConf)
		iniInst  = ini.Empty()
	)
	setFieldsDefaultValue(group)
	setFieldsDefaultValue(exchange)

	sGroup, _ := iniInst.NewSection(CF_GROUP)
	sGroup.Comment = strings.TrimSpace(_CONF_HEADER)
	if err = sGroup.ReflectFrom(group); err != nil {
		return
	}

	sExch, _ := iniInst.NewSection(CF_EXCHANGE)
	sExch.Comment = strings.TrimSpace(_CONF_EXCHANGE)
	if err = sExch.ReflectFrom(exchange); err != nil {
		return
	}
	_, err = iniInst.WriteTo(f)
	return
}

// set default values by field tag
func setFieldsDefaultValue(str interface{}) {
	typ := reflect.TypeOf(str)
	val := reflect.ValueOf(str)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
		val = val.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		ft := typ.Field(i)
		fv := val.Field(i)
		imp := ft.Tag.Get("importable")
		if !ft.Anonymous && imp != NULL {
			k := fv.Kind()
			switch k {
			case reflect.String:
				fv.SetString(imp)
			case reflect.Int:
				intVal, err := strconv.ParseInt(imp, 10, 0)
				if err == nil {
					fv.SetInt(intVal)
				}
			case reflect.Uint64:
				uintVal, err := strconv.ParseUint(imp, 10, 64)
				if err == nil {
					fv.SetUint(uintVal)
				}
			default:
				panic(errors.New("unsupported kind " + k.String()))
			}
		}
	}
}

const _CONF_HEADER = `
# -------------------------------------------------
#   dhdemo configuration
#   Alpha/Prime are the defaults of every command.
#   MaxModulus bounds the O(q) table and brute-force work.
# -------------------------------------------------
`

const _CONF_EXCHANGE = `
# Network exchange between two dhdemo processes.
# Transport = tcp://host:port or kcp://host:port/fast
# PrivateKey = 0 draws a random key in [1, q-2].
`
