package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/m04kA/SMC-SlotBooking/internal/domain"
	slotRepo "github.com/m04kA/SMC-SlotBooking/internal/infra/storage/slot"
)

// SlotRepository слоты в памяти, ошибки совпадают с PostgreSQL репозиторием
type SlotRepository struct {
	store *Store
}

func (r *SlotRepository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	var created *domain.Slot
	err := r.store.write(ctx, func(st *state) error {
		st.nextSlotID++
		now := r.store.now()

		created = slot.Clone()
		created.ID = st.nextSlotID
		created.CreatedAt = now
		created.UpdatedAt = now
		created.DeletedAt = nil

		st.slots[created.ID] = created.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *SlotRepository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.get(ctx, id, false)
}

func (r *SlotRepository) GetByIDIncludeDeleted(ctx context.Context, id int64) (*domain.Slot, error) {
	return r.get(ctx, id, true)
}

// GetByIDForUpdate в памяти блокировка строки не нужна: транзакция и так держит все хранилище
func (r *SlotRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error) {
	if !r.store.InTransaction(ctx) {
		return nil, fmt.Errorf("%w: GetByIDForUpdate", slotRepo.ErrNoTransaction)
	}
	return r.get(ctx, id, false)
}

func (r *SlotRepository) get(ctx context.Context, id int64, includeDeleted bool) (*domain.Slot, error) {
	var found *domain.Slot
	err := r.store.read(ctx, func(st *state) error {
		slot, ok := st.slots[id]
		if !ok || (slot.IsDeleted() && !includeDeleted) {
			return slotRepo.ErrSlotNotFound
		}
		found = slot.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *SlotRepository) Update(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	var updated *domain.Slot
	err := r.store.write(ctx, func(st *state) error {
		current, ok := st.slots[slot.ID]
		if !ok || current.IsDeleted() {
			return slotRepo.ErrSlotNotFound
		}

		updated = slot.Clone()
		updated.TeacherID = current.TeacherID
		updated.ClassID = current.ClassID
		updated.CreatedAt = current.CreatedAt
		updated.UpdatedAt = r.store.now()
		updated.DeletedAt = nil

		st.slots[slot.ID] = updated.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *SlotRepository) SoftDelete(ctx context.Context, id int64) error {
	return r.store.write(ctx, func(st *state) error {
		slot, ok := st.slots[id]
		if !ok || slot.IsDeleted() {
			return slotRepo.ErrSlotNotFound
		}
		now := r.store.now()
		slot.DeletedAt = &now
		slot.UpdatedAt = now
		return nil
	})
}

func (r *SlotRepository) List(ctx context.Context, filter domain.SlotFilter) ([]*domain.Slot, error) {
	from := filter.From.Format(domain.DateFormat)
	to := filter.To.Format(domain.DateFormat)

	slots := make([]*domain.Slot, 0)
	err := r.store.read(ctx, func(st *state) error {
		for _, slot := range st.slots {
			if slot.IsDeleted() {
				continue
			}
			if filter.ClassID != nil && slot.ClassID != *filter.ClassID {
				continue
			}
			if filter.TeacherID != nil && slot.TeacherID != *filter.TeacherID {
				continue
			}
			day := slot.Date.Format(domain.DateFormat)
			if day < from || day > to {
				continue
			}
			slots = append(slots, slot.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortSlots(slots)
	return slots, nil
}

func sortSlots(slots []*domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		a, b := slots[i], slots[j]
		da, db := a.Date.Format(domain.DateFormat), b.Date.Format(domain.DateFormat)
		if da != db {
			return da < db
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}
