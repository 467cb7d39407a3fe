package breeds

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Info es la ficha de una raza del catálogo.
type Info struct {
	Size         string   `json:"size"`
	Temperament  []string `json:"temperament"`
	EnergyLevel  string   `json:"energy_level"`
	LifeSpan     string   `json:"life_span"`
	Group        string   `json:"group"`
	GoodWithKids string   `json:"good_with_kids"`
	GoodWithPets string   `json:"good_with_pets"`
	Trainability string   `json:"trainability"`
}

// DefaultInfo es la ficha genérica para razas que el modelo conoce pero el
// catálogo no.
func DefaultInfo() Info {
	return Info{
		Size:         "Medium",
		Temperament:  []string{"Friendly", "Intelligent"},
		EnergyLevel:  "Moderate",
		LifeSpan:     "10-15 years",
		Group:        "Not specified",
		GoodWithKids: "Unknown",
		GoodWithPets: "Unknown",
		Trainability: "Moderate",
	}
}

// Catalog resuelve nombres de clase del modelo a fichas de raza.
// Los archivos faltantes no son fatales: el catálogo arranca vacío y las
// consultas caen al default; un JSON malformado sí es error.
type Catalog struct {
	info       map[string]Info
	classNames []string
}

// Empty devuelve un catálogo sin razas ni clases. Todas las consultas caen
// al default.
func Empty() *Catalog {
	return &Catalog{info: map[string]Info{}}
}

func Load(breedInfoPath, classIndicesPath string) (*Catalog, error) {
	c := &Catalog{info: map[string]Info{}}

	if raw, err := os.ReadFile(breedInfoPath); err == nil {
		if err := json.Unmarshal(raw, &c.info); err != nil {
			return nil, fmt.Errorf("breeds: parse %s: %w", breedInfoPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("breeds: read %s: %w", breedInfoPath, err)
	}

	names, err := loadClassNames(classIndicesPath)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		// Fallback: las claves del catálogo como clases del modelo.
		for key := range c.info {
			names = append(names, key)
		}
		sort.Strings(names)
	}
	c.classNames = names

	return c, nil
}

// loadClassNames acepta ambos formatos del archivo de índices: un objeto
// {"0": "clase", ...} o una lista plana.
func loadClassNames(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("breeds: read %s: %w", path, err)
	}

	var asList []string
	if err := json.Unmarshal(raw, &asList); err == nil {
		return asList, nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return nil, fmt.Errorf("breeds: parse %s: %w", path, err)
	}

	names := make([]string, len(asMap))
	for k, v := range asMap {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(asMap) {
			return nil, fmt.Errorf("breeds: bad class index %q in %s", k, path)
		}
		names[i] = v
	}
	return names, nil
}

// NormalizeName unifica guiones y underscores a espacios para comparar
// nombres de raza entre el modelo y el catálogo.
func NormalizeName(name string) string {
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// DisplayName es el nombre normalizado en Title Case, como se expone al
// cliente.
func DisplayName(name string) string {
	words := strings.Fields(NormalizeName(name))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// Info busca la ficha de una raza con matching normalizado e insensible a
// mayúsculas. Devuelve el default y false cuando no está en el catálogo.
func (c *Catalog) Info(name string) (Info, bool) {
	normalized := strings.ToLower(NormalizeName(name))
	for key, info := range c.info {
		if strings.ToLower(NormalizeName(key)) == normalized {
			return info, true
		}
	}
	return DefaultInfo(), false
}

// Names devuelve los nombres de todas las clases del modelo, listos para
// mostrar y ordenados.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.classNames))
	for _, n := range c.classNames {
		out = append(out, DisplayName(n))
	}
	sort.Strings(out)
	return out
}

// ClassName resuelve el índice de clase del modelo a su nombre crudo.
func (c *Catalog) ClassName(i int) (string, bool) {
	if i < 0 || i >= len(c.classNames) {
		return "", false
	}
	return c.classNames[i], true
}

func (c *Catalog) NumClasses() int { return len(c.classNames) }

func (c *Catalog) NumBreeds() int { return len(c.info) }
