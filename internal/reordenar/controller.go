package reordenar

// Controller tracks the drag state of one container and applies drops.
//
// State machine:
//
//	Iniciar(origem)        -> arrastando = origem
//	Sobre(destino)         -> indicador = destino (cleared when destino == origem)
//	SobreFim()             -> end-of-list zone highlighted
//	Soltar / SoltarNoFim   -> reorder via callback, then clear everything
//	Encerrar()             -> clear everything (drag end, with or without drop)
type Controller[T any, K comparable] struct {
	chave       func(T) K
	aoReordenar func([]T)

	arrastando  K
	ativo       bool
	indicador   K
	temIndicado bool
	fim         bool
}

// Novo builds a controller for a container whose items are identified by chave.
// aoReordenar receives the full new ordering after a successful drop.
func Novo[T any, K comparable](chave func(T) K, aoReordenar func([]T)) *Controller[T, K] {
	return &Controller[T, K]{chave: chave, aoReordenar: aoReordenar}
}

// NovaLista is the generic list container.
func NovaLista[T any, K comparable](chave func(T) K, aoReordenar func([]T)) *Controller[T, K] {
	return Novo(chave, aoReordenar)
}

// Iniciar marks origem as being dragged.
func (c *Controller[T, K]) Iniciar(origem K) {
	c.limpar()
	c.arrastando = origem
	c.ativo = true
}

// Sobre is called while hovering over a candidate target.
func (c *Controller[T, K]) Sobre(destino K) {
	if !c.ativo {
		return
	}
	c.fim = false
	if destino == c.arrastando {
		var zero K
		c.indicador = zero
		c.temIndicado = false
		return
	}
	c.indicador = destino
	c.temIndicado = true
}

// SobreFim is called while hovering over the end-of-list zone.
func (c *Controller[T, K]) SobreFim() {
	if !c.ativo {
		return
	}
	var zero K
	c.indicador = zero
	c.temIndicado = false
	c.fim = true
}

// Soltar drops the dragged item on destino. Returns true when the order changed.
func (c *Controller[T, K]) Soltar(itens []T, destino K) bool {
	defer c.limpar()
	if !c.ativo {
		return false
	}
	nova, ok := Mover(itens, c.chave, c.arrastando, destino)
	if !ok {
		return false
	}
	if c.aoReordenar != nil {
		c.aoReordenar(nova)
	}
	return true
}

// SoltarNoFim drops the dragged item on the end-of-list zone.
func (c *Controller[T, K]) SoltarNoFim(itens []T) bool {
	defer c.limpar()
	if !c.ativo {
		return false
	}
	nova, ok := MoverParaFim(itens, c.chave, c.arrastando)
	if !ok {
		return false
	}
	if c.aoReordenar != nil {
		c.aoReordenar(nova)
	}
	return true
}

// Encerrar ends the drag; the cancel path is the same as a drag end without drop.
func (c *Controller[T, K]) Encerrar() { c.limpar() }

// Arrastando returns the dragged key, if any.
func (c *Controller[T, K]) Arrastando() (K, bool) { return c.arrastando, c.ativo }

// Indicador returns the key showing the drop indicator, if any.
func (c *Controller[T, K]) Indicador() (K, bool) { return c.indicador, c.temIndicado }

// FimIndicado reports whether the end-of-list zone is highlighted.
func (c *Controller[T, K]) FimIndicado() bool { return c.fim }

func (c *Controller[T, K]) limpar() {
	var zero K
	c.arrastando = zero
	c.ativo = false
	c.indicador = zero
	c.temIndicado = false
	c.fim = false
}
