package record

import (
	"fmt"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"ink_goban/internal/domain/game"
	"ink_goban/internal/domain/sgf"
	errs "ink_goban/internal/errors"
)

// Interpreter проигрывает SGF-запись и возвращает итоговое состояние
// доски: после каждого одиночного хода с доски снимаются мёртвые камни
// (группы без выхода на свободный пункт). Упрощённая семантика атари-го:
// bulk-свойства AB/AW считаются корректной расстановкой и проверку
// не запускают.
type Interpreter struct {
	log *zap.SugaredLogger
}

func NewInterpreter(log *zap.SugaredLogger) *Interpreter {
	return &Interpreter{log: log}
}

type cell uint8

const (
	cellEmpty cell = iota
	cellBlack
	cellWhite
)

// board владеет сеткой и списками живых камней на время разбора одной
// записи. Координаты здесь нулевые (как в SGF), сдвиг в единичные
// происходит только при финализации.
type board struct {
	size  int
	grid  []cell // row-major, grid[y*size+x]
	white []game.Stone
	black []game.Stone
}

// FromSGF разбирает запись целиком: либо полный GameData, либо ошибка.
// Частичных результатов не бывает.
func (it *Interpreter) FromSGF(raw string) (game.GameData, error) {
	doc, err := sgf.Parse(raw)
	if err != nil {
		return game.GameData{}, err
	}

	b := &board{}
	for _, prop := range flatten(doc) {
		if err := b.apply(prop, it.log); err != nil {
			return game.GameData{}, err
		}
	}

	return game.GameData{
		Size:        b.size,
		WhiteStones: finalize(b.white, b.size),
		BlackStones: finalize(b.black, b.size),
	}, nil
}

// flatten разворачивает дерево в линейный список свойств: свойства узла
// в исходном порядке, затем дочерние ветки по порядку, по всем партиям
// документа.
func flatten(doc *sgf.SGF) []sgf.Property {
	var props []sgf.Property
	var walk func(tree *sgf.GameTree)
	walk = func(tree *sgf.GameTree) {
		for _, node := range tree.Nodes {
			props = append(props, node.Properties...)
		}
		for _, child := range tree.Children {
			walk(child)
		}
	}
	for _, tree := range doc.Trees {
		walk(tree)
	}
	return props
}

func (b *board) apply(prop sgf.Property, log *zap.SugaredLogger) error {
	switch prop.Name {
	case "SZ":
		size, err := strconv.Atoi(prop.Values[0])
		if err != nil || size <= 0 {
			return fmt.Errorf("%w: bad board size %q", errs.ErrMalformedSGF, prop.Values[0])
		}
		b.size = size
		b.grid = make([]cell, size*size)
	case "B":
		return b.playMove(prop.Values[0], cellBlack)
	case "W":
		return b.playMove(prop.Values[0], cellWhite)
	case "AB":
		return b.addStones(prop.Values, cellBlack)
	case "AW":
		return b.addStones(prop.Values, cellWhite)
	default:
		log.Debugw("ignoring sgf property", "name", prop.Name)
	}
	return nil
}

// playMove ставит одиночный камень и сразу запускает проверку мёртвых
// групп: сначала для цвета сходившего, затем для противника — в этом
// порядке снимаются камни.
func (b *board) playMove(value string, colour cell) error {
	if b.size == 0 {
		return errs.ErrNoBoardSize
	}

	spot, pass, err := b.parsePoint(value)
	if err != nil {
		return err
	}
	if pass {
		return nil
	}

	b.place(spot, colour)

	if colour == cellBlack {
		b.black = b.sweepDead(b.black)
		b.white = b.sweepDead(b.white)
	} else {
		b.white = b.sweepDead(b.white)
		b.black = b.sweepDead(b.black)
	}
	return nil
}

// addStones — расстановка AB/AW. Камни просто появляются на доске,
// живость не пересчитывается.
func (b *board) addStones(values []string, colour cell) error {
	if b.size == 0 {
		return errs.ErrNoBoardSize
	}

	for _, value := range values {
		spot, pass, err := b.parsePoint(value)
		if err != nil {
			return err
		}
		if pass {
			return fmt.Errorf("%w: empty point in stone list", errs.ErrMalformedSGF)
		}
		b.place(spot, colour)
	}
	return nil
}

func (b *board) place(spot game.Stone, colour cell) {
	if colour == cellBlack {
		b.black = append(b.black, spot)
	} else {
		b.white = append(b.white, spot)
	}
	b.grid[spot.Y*b.size+spot.X] = colour
}

// parsePoint переводит пару букв SGF в нулевые координаты.
// Пустое значение — пас; "tt" на досках до 19 тоже означает пас.
func (b *board) parsePoint(value string) (game.Stone, bool, error) {
	if value == "" || (value == "tt" && b.size <= 19) {
		return game.Stone{}, true, nil
	}
	if len(value) != 2 || !isPointLetter(value[0]) || !isPointLetter(value[1]) {
		return game.Stone{}, false, fmt.Errorf("%w: bad point %q", errs.ErrMalformedSGF, value)
	}

	spot := game.Stone{X: int(value[0] - 'a'), Y: int(value[1] - 'a')}
	if spot.X >= b.size || spot.Y >= b.size {
		return game.Stone{}, false, fmt.Errorf("%w: %q on board %d", errs.ErrCoordinateOffBoard, value, b.size)
	}
	return spot, false, nil
}

func isPointLetter(c byte) bool { return c >= 'a' && c <= 'z' }

// sweepDead находит мёртвые камни цвета и убирает их со списка и с сетки.
func (b *board) sweepDead(stones []game.Stone) []game.Stone {
	dead := b.findDeadStones(stones)
	if len(dead) == 0 {
		return stones
	}

	isDead := make(map[game.Stone]bool, len(dead))
	for _, s := range dead {
		isDead[s] = true
		b.grid[s.Y*b.size+s.X] = cellEmpty
	}

	alive := stones[:0]
	for _, s := range stones {
		if !isDead[s] {
			alive = append(alive, s)
		}
	}
	return alive
}

// findDeadStones — итеративный поиск неподвижной точки по всему списку
// камней цвета: камень «спасён», если любой из его соседей по вертикали
// или горизонтали пуст либо уже спасён. Обход повторяется, пока проход
// не перестанет добавлять спасённых; остальные мертвы. Проверяется вся
// доска после каждого хода, не только группа последнего камня, —
// избыточно, но на досках до 19x19 это дёшево.
func (b *board) findDeadStones(stones []game.Stone) []game.Stone {
	safe := make(map[game.Stone]bool, len(stones))
	for {
		newSafeSpot := false
		for _, check := range stones {
			if safe[check] {
				continue
			}
			for _, n := range b.neighbours(check) {
				if b.grid[n.Y*b.size+n.X] == cellEmpty || safe[n] {
					safe[check] = true
					newSafeSpot = true
					break
				}
			}
		}
		if !newSafeSpot {
			break
		}
	}

	var dead []game.Stone
	for _, check := range stones {
		if !safe[check] {
			dead = append(dead, check)
		}
	}
	return dead
}

func (b *board) neighbours(spot game.Stone) []game.Stone {
	out := make([]game.Stone, 0, 4)
	if spot.X > 0 {
		out = append(out, game.Stone{X: spot.X - 1, Y: spot.Y})
	}
	if spot.X < b.size-1 {
		out = append(out, game.Stone{X: spot.X + 1, Y: spot.Y})
	}
	if spot.Y > 0 {
		out = append(out, game.Stone{X: spot.X, Y: spot.Y - 1})
	}
	if spot.Y < b.size-1 {
		out = append(out, game.Stone{X: spot.X, Y: spot.Y + 1})
	}
	return out
}

// SortStones упорядочивает камни по каноническому ключу x*size+y.
func SortStones(stones []game.Stone, size int) {
	sort.Slice(stones, func(i, j int) bool {
		return stones[i].X*size+stones[i].Y < stones[j].X*size+stones[j].Y
	})
}

// finalize сортирует выживших и переводит координаты из нулевых SGF
// в единичные, принятые остальной системой.
func finalize(stones []game.Stone, size int) []game.Stone {
	out := make([]game.Stone, len(stones))
	copy(out, stones)
	SortStones(out, size)
	for i := range out {
		out[i].X++
		out[i].Y++
	}
	return out
}
