package archive

import (
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

type s3Archive struct {
	uploader *s3manager.Uploader
	svc      *s3.S3
	awsConf  AWSConfig
}

func enforceFolderPath(fp string) string {
	if len(fp) < 1 {
		return fp
	}
	if string(fp[len(fp)-1]) != "/" {
		fp = fp + "/"
	}
	return fp
}

func getFileNameFromFilePath(filePath string) string {
	elems := strings.Split(filePath, "/")
	if len(elems) < 1 {
		return filePath
	}
	return elems[len(elems)-1]
}

func remoteKey(folderPath, filePath string) string {
	return enforceFolderPath(folderPath) + getFileNameFromFilePath(filePath)
}

func (archive *s3Archive) UploadFile(bucketName string, awsfolderPath string, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer file.Close()
	_, err = archive.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(remoteKey(awsfolderPath, filePath)),
		Body:   file,
	})
	return err
}

func (archive *s3Archive) CheckFileIntergrity(bucketName string, awsfolderPath string, filePath string) (bool, error) {
	fi, err := os.Stat(filePath)
	if err != nil {
		return false, err
	}
	resp, err := archive.svc.ListObjects(&s3.ListObjectsInput{
		Bucket: aws.String(bucketName),
		Prefix: aws.String(remoteKey(awsfolderPath, filePath)),
	})
	if err != nil {
		return false, err
	}
	localFileName := getFileNameFromFilePath(filePath)
	for _, item := range resp.Contents {
		remoteFileName := getFileNameFromFilePath(*item.Key)
		if remoteFileName == localFileName && *item.Size == fi.Size() {
			return true, nil
		}
	}
	return false, nil
}

func (archive *s3Archive) GetLogBucketName() string {
	return archive.awsConf.LogBucketName
}

func (archive *s3Archive) GetLogFolderPath() string {
	return archive.awsConf.LogFolderPath
}

func NewS3Archive(conf AWSConfig) *s3Archive {
	crdtl := credentials.NewStaticCredentials(conf.AccessKeyID, conf.SecretKey, conf.Token)
	sess := session.Must(session.NewSession(&aws.Config{
		Region:      aws.String(conf.Region),
		Credentials: crdtl,
	}))
	return &s3Archive{
		uploader: s3manager.NewUploader(sess),
		svc:      s3.New(sess),
		awsConf:  conf,
	}
}
