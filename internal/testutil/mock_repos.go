package testutil

import (
	"context"

	"oficri/mesapartes/internal/core/muestra"
	"oficri/mesapartes/internal/core/oficio"
	"oficri/mesapartes/internal/core/referencia"
	"oficri/mesapartes/internal/core/usuario"
)

// MockOficioRepository is a mock implementation of oficio.Repository.
type MockOficioRepository struct {
	CreateFunc            func(ctx context.Context, of oficio.Oficio) (int64, error)
	UpdateFunc            func(ctx context.Context, of oficio.Oficio) error
	FindByIDFunc          func(ctx context.Context, id int64) (*oficio.Oficio, error)
	ExistsNumeroFunc      func(ctx context.Context, numero string) (bool, error)
	ListFunc              func(ctx context.Context, page, size int, filtro oficio.Filtro) ([]oficio.Oficio, int, error)
	AppendSeguimientoFunc func(ctx context.Context, seg oficio.Seguimiento) error
	SeguimientosFunc      func(ctx context.Context, oficioID int64) ([]oficio.Seguimiento, error)
}

func (m *MockOficioRepository) Create(ctx context.Context, of oficio.Oficio) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, of)
	}
	return 1, nil
}

func (m *MockOficioRepository) Update(ctx context.Context, of oficio.Oficio) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, of)
	}
	return nil
}

func (m *MockOficioRepository) FindByID(ctx context.Context, id int64) (*oficio.Oficio, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOficioRepository) ExistsNumero(ctx context.Context, numero string) (bool, error) {
	if m.ExistsNumeroFunc != nil {
		return m.ExistsNumeroFunc(ctx, numero)
	}
	return false, nil
}

func (m *MockOficioRepository) List(ctx context.Context, page, size int, filtro oficio.Filtro) ([]oficio.Oficio, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, page, size, filtro)
	}
	return []oficio.Oficio{}, 0, nil
}

func (m *MockOficioRepository) AppendSeguimiento(ctx context.Context, seg oficio.Seguimiento) error {
	if m.AppendSeguimientoFunc != nil {
		return m.AppendSeguimientoFunc(ctx, seg)
	}
	return nil
}

func (m *MockOficioRepository) Seguimientos(ctx context.Context, oficioID int64) ([]oficio.Seguimiento, error) {
	if m.SeguimientosFunc != nil {
		return m.SeguimientosFunc(ctx, oficioID)
	}
	return []oficio.Seguimiento{}, nil
}

// MockMuestraRepository is a mock implementation of muestra.Repository.
type MockMuestraRepository struct {
	CreateFunc          func(ctx context.Context, m muestra.Muestra) (string, error)
	UpdateFunc          func(ctx context.Context, m muestra.Muestra) error
	MergeResultadosFunc func(ctx context.Context, id string, resultados map[string]string) error
	FindByOficioFunc    func(ctx context.Context, oficioID int64) ([]muestra.Muestra, error)
	FindByIDFunc        func(ctx context.Context, id string) (*muestra.Muestra, error)
}

func (m *MockMuestraRepository) Create(ctx context.Context, mu muestra.Muestra) (string, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, mu)
	}
	return "mock-muestra-id", nil
}

func (m *MockMuestraRepository) Update(ctx context.Context, mu muestra.Muestra) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, mu)
	}
	return nil
}

func (m *MockMuestraRepository) MergeResultados(ctx context.Context, id string, resultados map[string]string) error {
	if m.MergeResultadosFunc != nil {
		return m.MergeResultadosFunc(ctx, id, resultados)
	}
	return nil
}

func (m *MockMuestraRepository) FindByOficio(ctx context.Context, oficioID int64) ([]muestra.Muestra, error) {
	if m.FindByOficioFunc != nil {
		return m.FindByOficioFunc(ctx, oficioID)
	}
	return []muestra.Muestra{}, nil
}

func (m *MockMuestraRepository) FindByID(ctx context.Context, id string) (*muestra.Muestra, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	return nil, nil
}

// MockUsuarioRepository is a mock implementation of usuario.Repository.
type MockUsuarioRepository struct {
	CreateFunc     func(ctx context.Context, u usuario.Usuario) error
	UpdateFunc     func(ctx context.Context, u usuario.Usuario) error
	FindByCIPFunc  func(ctx context.Context, cip string, rol usuario.Rol) (*usuario.Usuario, error)
	ListFunc       func(ctx context.Context, rol usuario.Rol, page, size int, busqueda string) ([]usuario.Usuario, int, error)
	DeactivateFunc func(ctx context.Context, cip string, rol usuario.Rol) error
}

func (m *MockUsuarioRepository) Create(ctx context.Context, u usuario.Usuario) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockUsuarioRepository) Update(ctx context.Context, u usuario.Usuario) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, u)
	}
	return nil
}

func (m *MockUsuarioRepository) FindByCIP(ctx context.Context, cip string, rol usuario.Rol) (*usuario.Usuario, error) {
	if m.FindByCIPFunc != nil {
		return m.FindByCIPFunc(ctx, cip, rol)
	}
	return nil, nil
}

func (m *MockUsuarioRepository) List(ctx context.Context, rol usuario.Rol, page, size int, busqueda string) ([]usuario.Usuario, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, rol, page, size, busqueda)
	}
	return []usuario.Usuario{}, 0, nil
}

func (m *MockUsuarioRepository) Deactivate(ctx context.Context, cip string, rol usuario.Rol) error {
	if m.DeactivateFunc != nil {
		return m.DeactivateFunc(ctx, cip, rol)
	}
	return nil
}

// MockReferenciaRepository is a mock implementation of referencia.Repository.
type MockReferenciaRepository struct {
	CreateFunc   func(ctx context.Context, tipo referencia.Tipo, r referencia.Registro) (int64, error)
	UpdateFunc   func(ctx context.Context, tipo referencia.Tipo, r referencia.Registro) error
	DeleteFunc   func(ctx context.Context, tipo referencia.Tipo, id int64) error
	FindByIDFunc func(ctx context.Context, tipo referencia.Tipo, id int64) (*referencia.Registro, error)
	ListFunc     func(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error)
}

func (m *MockReferenciaRepository) Create(ctx context.Context, tipo referencia.Tipo, r referencia.Registro) (int64, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tipo, r)
	}
	return 1, nil
}

func (m *MockReferenciaRepository) Update(ctx context.Context, tipo referencia.Tipo, r referencia.Registro) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tipo, r)
	}
	return nil
}

func (m *MockReferenciaRepository) Delete(ctx context.Context, tipo referencia.Tipo, id int64) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, tipo, id)
	}
	return nil
}

func (m *MockReferenciaRepository) FindByID(ctx context.Context, tipo referencia.Tipo, id int64) (*referencia.Registro, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, tipo, id)
	}
	return nil, nil
}

func (m *MockReferenciaRepository) List(ctx context.Context, tipo referencia.Tipo) ([]referencia.Registro, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, tipo)
	}
	return []referencia.Registro{}, nil
}
