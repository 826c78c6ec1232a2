package config

const (
	defaultHomeDir               = "~/.local/share/xrefcanon"
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
	defaultMinTrust              = 1.0
	defaultParallelism           = 4
	defaultMiriamURL             = "https://registry.api.identifiers.org/restApi/namespaces"
	defaultOLSURL                = "https://www.ebi.ac.uk/ols/api/ontologies"
	defaultOBOFoundryURL         = "https://raw.githubusercontent.com/OBOFoundry/OBOFoundry.github.io/master/registry/ontologies.yml"
	defaultRegistryTimeout       = 30
	defaultMappingDriver         = "sqlite"
	defaultPublishRegion         = "us-east-1"
	defaultPublishPrefix         = "xrefcanon"
	defaultCacheDirName          = "cache"
	defaultOutputDirName         = "dumps"
	defaultLogDirName            = "logs"
	defaultSourceDirName         = "sources"
	mappingDSNEnv                = "XREFCANON_MAPPING_DSN"
	publishBucketEnv             = "XREFCANON_PUBLISH_BUCKET"
	defaultNamespacePriorityBase = 1
)

// defaultPriority ranks the hub identifier systems ahead of peripheral ones.
var defaultPriority = []string{
	"hgnc",
	"mgi",
	"rgd",
	"ncbigene",
	"ensembl",
	"uniprot",
	"chebi",
	"pubchem.compound",
	"mesh",
	"doid",
	"mondo",
	"hp",
	"go",
}

func boolPtr(v bool) *bool { return &v }

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{},
		Canonicalizer: Canonicalizer{
			Priority:    append([]string(nil), defaultPriority...),
			MinTrust:    defaultMinTrust,
			Parallelism: defaultParallelism,
		},
		Namespaces: map[string]Namespace{
			"ncbigene": {HasAltIDs: boolPtr(false)},
			"uniprot":  {Species: SpeciesUnsupported},
		},
		Registry: Registry{
			MiriamURL:      defaultMiriamURL,
			OLSURL:         defaultOLSURL,
			OBOFoundryURL:  defaultOBOFoundryURL,
			TimeoutSeconds: defaultRegistryTimeout,
		},
		MappingDB: MappingDB{
			Driver: defaultMappingDriver,
		},
		Publish: Publish{
			Region: defaultPublishRegion,
			Prefix: defaultPublishPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
