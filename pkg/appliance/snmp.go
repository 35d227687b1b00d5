package appliance

import (
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/x1thexxx-lgtm/goserials/pkg/config"
)

// entPhysicalSerialNum for the chassis entity.
const oidEntPhysicalSerialNum = ".1.3.6.1.2.1.47.1.1.1.1.11.1"

// SNMPProbe is the fallback path for appliances whose REST API is down but
// whose SNMP agent still answers.
type SNMPProbe struct {
	cfg config.SNMPConfig
}

// NewSNMPProbe builds a probe from the snmp config section. Returns nil when
// the fallback is disabled, which callers treat as "no probe".
func NewSNMPProbe(cfg config.SNMPConfig) *SNMPProbe {
	if !cfg.Enabled || cfg.Community == "" {
		return nil
	}
	if cfg.Port == 0 {
		cfg.Port = 161
	}
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 2000
	}
	return &SNMPProbe{cfg: cfg}
}

// SerialNumber queries entPhysicalSerialNum on the target. The second return
// value reports whether a usable serial came back; failures are not
// distinguished further since the REST error marker stands either way.
func (p *SNMPProbe) SerialNumber(target string) (string, bool) {
	snmp := &gosnmp.GoSNMP{
		Target:    target,
		Port:      uint16(p.cfg.Port),
		Community: p.cfg.Community,
		Version:   gosnmp.Version2c,
		Timeout:   time.Duration(p.cfg.TimeoutMS) * time.Millisecond,
		Retries:   0,
	}
	if err := snmp.Connect(); err != nil {
		return "", false
	}
	defer snmp.Conn.Close()

	result, err := snmp.Get([]string{oidEntPhysicalSerialNum})
	if err != nil {
		return "", false
	}
	for _, variable := range result.Variables {
		if variable.Name != oidEntPhysicalSerialNum {
			continue
		}
		switch v := variable.Value.(type) {
		case []byte:
			serial := strings.TrimSpace(string(v))
			return serial, serial != ""
		case string:
			serial := strings.TrimSpace(v)
			return serial, serial != ""
		}
	}
	return "", false
}
