package client

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncerConservaUltimoValor(t *testing.T) {
	var (
		mu      sync.Mutex
		valores []string
	)
	d := NewDebouncer(30*time.Millisecond, func(v string) {
		mu.Lock()
		valores = append(valores, v)
		mu.Unlock()
	})
	defer d.Stop()

	for _, v := range []string{"h", "ho", "hom", "homi", "homic"} {
		d.Llamar(v)
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(valores) != 1 {
		t.Fatalf("invocaciones = %d, se esperaba 1 (%v)", len(valores), valores)
	}
	if valores[0] != "homic" {
		t.Errorf("valor = %q, se esperaba el último escrito", valores[0])
	}
}

func TestDebouncerRafagasSeparadas(t *testing.T) {
	var (
		mu      sync.Mutex
		valores []string
	)
	d := NewDebouncer(20*time.Millisecond, func(v string) {
		mu.Lock()
		valores = append(valores, v)
		mu.Unlock()
	})
	defer d.Stop()

	d.Llamar("robo")
	time.Sleep(60 * time.Millisecond)
	d.Llamar("hurto")
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(valores) != 2 || valores[0] != "robo" || valores[1] != "hurto" {
		t.Errorf("invocaciones = %v, se esperaban dos separadas", valores)
	}
}

func TestDebouncerStopCancelaPendiente(t *testing.T) {
	var (
		mu       sync.Mutex
		llamadas int
	)
	d := NewDebouncer(20*time.Millisecond, func(string) {
		mu.Lock()
		llamadas++
		mu.Unlock()
	})

	d.Llamar("lesiones")
	d.Stop()
	d.Llamar("tras stop")

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if llamadas != 0 {
		t.Errorf("llamadas = %d, Stop debió cancelar la invocación pendiente", llamadas)
	}
}
