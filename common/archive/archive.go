package archive

// Archive is a remote location that keeps copies of local files.
type Archive interface {
	// UploadFile uploads a local file to a remote destination.
	// The local file name should be passed in as full file Path.
	UploadFile(bucketName string, destinationFolder string, filePath string) error
	// CheckFileIntergrity ensures that the local file and the uploaded version are identical.
	CheckFileIntergrity(bucketName string, destinationFolder string, filePath string) (bool, error)
	// GetLogBucketName returns the pre-configured remote bucket to store logs.
	GetLogBucketName() string
	// GetLogFolderPath returns the pre-configured remote folder to store logs.
	GetLogFolderPath() string
}
