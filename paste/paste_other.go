//go:build !linux

package paste

import (
	"runtime"

	"github.com/micmonay/keybd_event"
)

// KeySender emits the paste keystroke through the OS input APIs: Cmd+V on
// macOS, Ctrl+V elsewhere.
type KeySender struct{}

func NewSender() *KeySender {
	return &KeySender{}
}

func (s *KeySender) Available() bool {
	_, err := keybd_event.NewKeyBonding()
	return err == nil
}

func (s *KeySender) Send() error {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		return err
	}
	kb.SetKeys(keybd_event.VK_V)
	if runtime.GOOS == "darwin" {
		kb.HasSuper(true)
	} else {
		kb.HasCTRL(true)
	}
	return kb.Launching()
}
